// Package password provides the salted, slow password hashing primitive
// used for credential storage and verification.
//
// Hashing is exposed through the Hasher interface so services receive it
// as an explicit constructor dependency and tests can lower the cost
// factor without touching global state. The default implementation uses
// bcrypt from golang.org/x/crypto.
package password
