// Package fileutil provides error-tolerant directory scanning for document discovery.
//
// ScanDirectory walks a root directory and returns every file whose extension is
// in the requested set. Problems below the root (permission-denied subtrees,
// entries that vanish mid-walk) are collected in ScanResult.Errors and the walk
// continues, so a partially readable tree still yields its readable documents.
// Only a missing or unresolvable root, or a root that is not a directory, fails
// the scan outright.
//
// Typical use, finding every work unit under a project root:
//
//	result, err := fileutil.ScanDirectory(root, fileutil.ScanOptions{
//	    Extensions: []string{".wwu"},
//	    Recursive:  true,
//	})
//	if err != nil {
//	    return err
//	}
//	for _, walkErr := range result.Errors {
//	    log.Printf("skipped: %v", walkErr)
//	}
//
// Extension matching is case-insensitive unless CaseSensitiveExt is set, and a
// leading dot is optional. Hidden directories are descended into unless SkipHidden
// is set. Symlinked directories are followed and reported under the link path;
// every real directory is entered at most once, so link cycles terminate. Output paths are
// absolute and sorted, but callers that fan files out to workers should not
// depend on that order surviving.
package fileutil
