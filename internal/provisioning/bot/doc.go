// Package bot deploys an Amazon Lex (V1) bot from an exported bot
// definition stored in S3.
//
// Deployment is strictly ordered: every slot type, then every intent, then
// the bot, and once the bot build is READY, the alias. Each write is an
// idempotent upsert. The $LATEST version is fetched first and its checksum
// is sent with the put, or omitted when the object does not exist yet.
// Built-in AMAZON.* slot types and intents are never written.
//
// Deleting the resource removes the aliases and the bot. Slot types and
// intents are left in place because a renamed bot may still share them.
package bot
