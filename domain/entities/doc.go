// Package entities holds the value types shared by every layer of sensecore:
// capability identifiers, status codes, versions, implementation descriptors,
// export tables, the dispatch document and bootstrap reports.
package entities
