// Package archive keeps a local SQLite history of pipeline runs. The
// remote store holds the pipeline's record of truth; the archive exists so
// an operator can inspect run history on the machine that ran the scraper
// even when the store is unreachable.
package archive
