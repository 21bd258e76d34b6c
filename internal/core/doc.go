// Package core provides the business logic for property spreadsheet ingestion.
//
// This package holds all domain logic independent of HTTP, storage or the
// workbook format. It can be used by web handlers, CLI tools, or tests
// without modification.
//
// # Pipeline
//
// Each upload runs a fixed, sequential pipeline over every data row of every
// sheet in the workbook:
//
//  1. [NormalizeCell] turns a raw spreadsheet [Cell] into canonical text
//  2. [ExtractRow] maps 22 positional cells to a [FieldRecord]
//  3. [RowValidator] applies the schema tier ([SchemaRules]) and then the
//     business tier, producing a [RowOutcome]
//  4. [ConvertRow] maps accepted records to a persistable [Property]
//
// [Service.ProcessUpload] drives the pipeline. It creates a [BatchAudit] in
// the PROCESSING state before any row is read, records one outcome per row,
// and finishes in COMPLETED or FAILED.
//
// # Row Isolation
//
// Extraction failures, schema errors, business warnings and conversion
// failures are recorded against the row and never abort the batch. Only a
// workbook that cannot be read, or final writes that fail, leave the upload
// FAILED.
//
// # Storage
//
// Audits and properties are reached through [AuditRepository] and
// [PropertyRepository]. The package keeps no global state of its own.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB007: Database errors (duplicates, constraints, connections)
//   - FILE001-FILE007: File errors (size, format, unreadable workbook)
//   - UPL002-UPL006: Upload errors (busy, not found, cancelled, timeout)
//   - PRP001-PRP003: Property administration errors
//   - REQ001: Malformed request bodies
package core
