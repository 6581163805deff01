// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the command dispatch layer that turns a
// loaded plan and a command name into rendered output, decoupled from any
// specific entrypoint like a CLI.
package app
