// Package all wires every built-in storage backend into the storage factory.
//
// It exists purely for side effects: importing it (even as a blank import)
// runs the init functions of each concrete backend, which register their
// factories with the storage package. Importing this package makes the
// following drivers available at runtime:
//
//   - "mysql"    (sheetloader/internal/storage/mysql)
//   - "postgres" (sheetloader/internal/storage/postgres)
//   - "mssql"    (sheetloader/internal/storage/mssql)
//   - "sqlite"   (sheetloader/internal/storage/sqlite)
//
// Binaries that only need a subset can import the individual backend
// packages instead.
package all

import (
	_ "sheetloader/internal/storage/mssql"
	_ "sheetloader/internal/storage/mysql"
	_ "sheetloader/internal/storage/postgres"
	_ "sheetloader/internal/storage/sqlite"
)
