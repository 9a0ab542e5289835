// Package ingestion reads policy documents, splits them into overlapping
// chunks and upserts the chunks into the policy store.
//
// A document is processed in four steps:
//
//  1. Extract validates the raw bytes (UTF-8, no binary content), normalizes
//     them to NFC and drops control characters.
//  2. Chunk slides a fixed-size window over the text and keeps every window
//     whose trimmed length exceeds the configured minimum.
//  3. The chunks are upserted under IDs derived from the document ID and the
//     chunk index, so re-ingesting an unchanged document replaces rather
//     than duplicates.
//  4. When the document shrank, chunks beyond the new last index are pruned.
//
// Failures are isolated per document. IngestBatch and IngestDirectory record
// the reason for every failed document in the BatchReport and carry on with
// the rest of the batch.
//
// Watcher re-ingests files as they change on disk and Scheduler re-ingests
// the whole source directory on a cron schedule.
package ingestion
