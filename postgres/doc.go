/*
Package postgres manages the database connection and owns account lifecycle
state. As part of the connection process, we also ensure that all migrations
have been run on the proper database. The situation where the database is
simply a target for some testing has been considered as well; in that scenario
we drop the public schema first.

The [AccountStore] is the only writer. Each transition commits the next
account row and its activity-log entry in one transaction under a row lock,
then emits a change event to the feed. Readers - the admin API, the operator
console's periodic refresh - only ever see committed state.
*/
package postgres
