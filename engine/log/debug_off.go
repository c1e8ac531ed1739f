//go:build !spritedebug

package log

// DebugBuild is false in release builds.
const DebugBuild = false
