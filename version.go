package weft

// Version is the release of the weft module.
var Version = "0.3.0"
