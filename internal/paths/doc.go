// Resolves the on-disk layout for fetched sources and built artifacts.
//
// The dependency root comes from the SGDK_HELPER_DIR environment variable,
// read exactly once at startup into a [Config] that is passed through
// constructors. Transient files (image build contexts) live under the XDG
// runtime directory instead, with platform-native fallbacks.
package paths
