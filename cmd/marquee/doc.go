// Command marquee is the terminal client for the marquee movie discovery
// service: it runs the daemon, lists curator personas, requests one-shot
// recommendations, and manages configuration.
package main
