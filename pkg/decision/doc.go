// Package decision classifies a masked citizen request against the policy
// chunks retrieved for it.
//
// A Strategy is a single-shot classifier. The Reference strategy never
// approves or rejects on its own: with supporting policy it routes the
// request to human review, without any it reports UNCERTAIN.
//
// Callers run strategies through EvaluateSafely, which turns an error or a
// panic of a substituted strategy into an UNCERTAIN decision plus a
// *DecisionError so the request path never crashes on a faulty strategy.
package decision
