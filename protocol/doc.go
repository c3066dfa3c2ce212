// Package protocol implements parsing and serialising of the payloads a
// threat list client exchanges with the list service (Safe Browsing v2.2).
//
// The service hands out lists of URL hash prefixes in numbered chunks. A
// client keeps the chunks it has received and periodically asks for the rest.
//
// - `Chunk`    - A numbered unit of data that adds entries to a list (add
//                chunk) or retracts entries added earlier (sub chunk).
// - `Prefix`   - The first 4 bytes of the SHA-256 of a canonical URL fragment.
// - `FullHash` - The whole 32 byte SHA-256, fetched on demand for a prefix hit.
// - `MAC`      - HMAC over response data, present when the client holds a key.
//
// === General Syntax
//
// - Header lines are ASCII, `\n` terminated and split on `:`
// - Binary data follows a header line and its length is declared in that line
// - Binary data is never scanned for delimiters, it may contain `\n` and NUL
//
// Any malformed response is rejected as a whole. Applying half of an update
// would leave the client's lists in a state the server does not know about.
//
// === Download request
//
//   ```
//     > goog-phish-shavar;a:1-5,10:s:3\n
//     > goog-malware-shavar;a:1-20:mac\n
//   ```
//
// === Update response
//
//   ```
//     < n:1700\n
//     < i:goog-phish-shavar\n
//     < u:cache.example.com/goog-phish-shavar_a_6501-6505,<mac>\n
//     < ad:1-7,43\n
//     < sd:21-27\n
//   ```
//
// `m:<mac>` covers every byte after its own line. `r:pleasereset` asks the
// client to drop all data, `e:pleaserekey` asks it to fetch new keys.
//
// === Chunk data
//
// Fetched from each `u:` URL. A run of
//
//   ```
//     a:<number>:<hash length>:<length>\n<length bytes>
//     s:<number>:<hash length>:<length>\n<length bytes>
//   ```
//
// The body is a run of host records:
//
//   ```
//     add: host(4) count(1) hash*count
//     sub: host(4) count(1) (addchunk(4) hash)*count
//     sub: host(4) 0 addchunk(4)
//   ```
//
// The add chunk number in sub records is big endian. Host keys and hashes
// are raw bytes. A host with more than 255 hashes is continued in the
// following record.
//
// === Get hash
//
//   ```
//     > 4:8\n<prefix><prefix>
//     < [<mac>\n]<list>:<add chunk>:<length>\n<length bytes of 32 byte hashes>
//   ```
//
// === New keys
//
//   ```
//     < clientkey:24:<key>\n
//     < wrappedkey:24:<key>\n
//   ```
package protocol
