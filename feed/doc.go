/*
Package feed carries row-level account changes from the record store to every
open operator session.

A [Broker] fans [Event] values out to subscribers. Two implementations exist:
[MemoryBroker] for single-process deployments and tests, and [RedisBroker]
for multi-node deployments, where each node's consoles must observe writes
committed by every other node.

Delivery is best effort by design. A session that misses an event - a stalled
channel, a dropped Redis connection - converges again on its next periodic
full refresh; the feed exists to make changes visible quickly, not to be the
source of truth.
*/
package feed
