/*
Package kvengine implements the embedded key/value engine on top of
go.etcd.io/bbolt: keyed get, ordered prefix scan, atomic batch apply, and
snapshot.

Rather than giving each entity kind its own bucket and JSON-marshaling
structs into it, kvengine stores every key in a single ordered byte-keyed
bucket: the binary layouts in pkg/keycodec already encode the entity kind
in their marker byte, and bbolt's bucket cursor gives lexicographic
ordering over raw keys for free, which is exactly what a part_id-prefixed
scan needs.
*/
package kvengine
