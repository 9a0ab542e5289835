// aigov is the compliance gateway of the AI governance framework.
//
// It masks personal data in citizen requests, retrieves the government
// policies relevant to each request and records a compliance decision
// for human review.
//
// Usage:
//
//	# Index the policy documents of the source directory
//	aigov ingest --dir ./data/raw_policies
//
//	# Start the request API
//	aigov serve --config /etc/aigov/config.yaml
//
//	# Inspect the masking of a text
//	aigov mask "Call Deepak Kumar at 9876543210"
//
//	# Run one request through the pipeline and print the audit record
//	aigov process "I am Deepak Kumar from Mumbai and need a housing subsidy"
//
//	# Search the policy store
//	aigov query "housing subsidy income limit" -k 5
package main

func main() {
	Execute()
}
