// Package webmap generates sitemaps by crawling websites. It walks a
// site breadth-first from a seed URL, restricted to the seed host, and
// renders the visited pages as a sitemaps.org XML document together
// with crawl statistics.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., purell/, goquery/, etree/).
package webmap
