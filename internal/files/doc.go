// Package files discovers report workbooks in a directory for batch parsing.
package files
