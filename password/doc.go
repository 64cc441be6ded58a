// Package password wraps bcrypt hashing for local credential verification.
//
// The directory stores bcrypt hashes; this package verifies candidates
// against them and mints random, unusable hashes for accounts provisioned
// through delegated identity, where no local password may ever succeed.
package password
