// Package queue ingests reports announced on a RabbitMQ queue.
//
// Each message names a file already written to the uploads directory:
//
//	{"report_id": "wk32", "project_id": "2134.00", "file_name": "week32.xlsx"}
//
// Stored reports are acked. Messages that can never succeed (bad JSON, missing file,
// no data sheet, unsupported format) are acked and logged. Other failures are
// requeued once, then rejected so a dead-letter exchange can pick them up.
package queue
