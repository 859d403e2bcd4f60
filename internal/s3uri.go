package internal

import "strings"

// ParseS3URI parses S3 URIs in the format s3://bucket/key.
//
// The only validation performed is that text starts with s3:// and has a
// non-empty bucket and a non-empty key separated by "/"; bucket and key
// naming rules are left to S3 itself to enforce.
func ParseS3URI(text string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(text, "s3://") {
		return "", "", false
	}

	parts := strings.SplitN(strings.TrimPrefix(text, "s3://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}

	return parts[0], parts[1], true
}
