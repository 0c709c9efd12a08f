// Package output writes build artifacts into the staging directory: rendered
// pages, markdown mirrors, feeds, the sitemap, discovery files, search
// indexes and static assets. Generators return bytes; Writer places them.
package output
