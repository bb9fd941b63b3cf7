package app

const ServiceName = "sctp02-crud-mongo"

// Version is overridden at build time with -ldflags "-X ...app.Version=".
var Version = "1.0.0"
