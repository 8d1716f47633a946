/*
Package keycodec implements the bit-exact binary key layouts for vertex,
edge, index, and operation-log keys stored in the embedded key/value
engine (pkg/kvengine).

All multi-byte integers are little-endian except the edge ranking, which is
big-endian with its sign bit XORed so that lexicographic byte order equals
numeric order, the operation-log sequence number, which is big-endian, and
the int/float/timestamp index field values, which are big-endian
order-preserving encodings. part_id always immediately follows the one-byte marker in
every key family, so a prefix scan bounded to a single partition never has
to inspect the variable-length tail.

	marker(1) | part_id(3) | ...family-specific tail...

	vertex:  tag_marker   | part_id | vid(vid_len)                         | tag_id(4)
	edge:    edge_marker  | part_id | src(vid_len) | edge_type(4) | rank(8) | dst(vid_len) | pad(1)
	index:   index_marker | part_id | index_id(4)  | fields...             | primary_id...
	oplog:   oplog_marker | part_id | seq(8)       | target...

The operation kind (delete or modify) is carried by the oplog marker byte
itself; there is no separate op_kind byte.

Changing any of these layouts is a wire-format break: they are read back by
nodes that have not yet upgraded, and the operation-log prefix is a stable
contract consumed by the (out-of-scope) index rebuild subsystem.
*/
package keycodec
