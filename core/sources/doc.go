// Package sources implements the catalog and record providers on top of gorm.
//
// Every row is scoped by a profile, the explicit selector that decides which catalog
// and record set a caller is served. Record attributes are stored as a JSON object
// and surface as reconcile rows with the identity added under the configured field.
package sources
