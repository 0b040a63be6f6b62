//go:build !s57debug

package parser

// debugAsserts turns cursor overruns into panics. Enable with -tags s57debug.
const debugAsserts = false
