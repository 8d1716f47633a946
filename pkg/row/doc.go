/*
Package row implements the stored-row reader and writer: decoding a row
payload against the schema version that authored it, and encoding a new
payload against the latest schema version.

Encoded layout: version(8, little-endian) | per column, in schema order:
presence(1) | value bytes (type-specific, little-endian). A column absent
from the payload is resolved at read time by falling back to its default
expression, then to null, in that order.
*/
package row
