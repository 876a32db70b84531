package web

import "embed"

// StaticFS holds the embedded dashboard assets (page, polling script, CSS).
//
//go:embed static/*
var StaticFS embed.FS
