// Package main hosts the ClipForge CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into calls
// against the ClipForge backend: OTP sign-in, workspace selection, folder and
// file management for the broll and music libraries, multipart uploads, the
// live task feed, and preset maintenance. It centralizes configuration
// resolution, credential storage, and structured logging setup so subcommands
// can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
