package database

import "fmt"

// Error kinds shared by both stores. Driver errors are wrapped alongside them.
var (
	ErrConnection     = fmt.Errorf("store connection failed")
	ErrStoreOperation = fmt.Errorf("store operation failed")
	ErrRecordNotFound = fmt.Errorf("cycle record not found")
)
