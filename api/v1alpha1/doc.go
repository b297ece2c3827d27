// Package v1alpha1 contains the wire types of storage proposal settings.
//
// The schema is shared by JSON and YAML documents. Several fields are unions
// (a short string form and an object form); those types implement the
// Marshaler/Unmarshaler interfaces of both encodings. Decoding a whole
// Settings document never fails on a malformed section: the section is
// dropped and the settings conversion fills it from the product defaults.
// Grammar checks belong to the schema validator that runs before decoding.
package v1alpha1
