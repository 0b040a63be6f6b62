//go:build s57debug

package parser

const debugAsserts = true
