/*
Package replicatedkv implements the replicated key/value collaborator on
top of github.com/hashicorp/raft and github.com/hashicorp/raft-boltdb,
the same pairing a raft-backed cluster manager uses for cluster-state
replication. Reads bypass raft and hit the local pkg/kvengine snapshot
directly, since get is a separate, non-append contract; writes are
proposed as a raft.Log whose payload is a write batch and are only
visible locally once the fsm commits them.

One Node is one partition's consensus group. Cluster routes a request
bearing (space, part) to the Node responsible for that partition,
matching the way pkg/dispatcher fans work out per partition.
*/
package replicatedkv
