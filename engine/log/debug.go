//go:build spritedebug

package log

// DebugBuild is true when built with the spritedebug tag. Contract violations panic and
// shader programs validate their uniform array lengths.
const DebugBuild = true
