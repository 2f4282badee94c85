// Package artifacts publishes finished project videos to S3-compatible
// object storage and hands back a presigned download URL.
//
// Publishing is optional. When the artifacts section of the configuration is
// disabled the constructor returns a no-op publisher, so workflow code never
// branches on storage availability.
package artifacts
