// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package version provides a single location to house the version information
// for vrfd and the utilities provided in the same repository.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// semanticAlphabet defines the allowed characters for the pre-release and
// build metadata portions of a semantic version string.
const semanticAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-."

// semverRE is a regular expression used to parse a semantic version string into
// its constituent parts.
var semverRE = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
	`(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*` +
	`[a-zA-Z-][0-9a-zA-Z-]*))*))?(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)

// These variables define the application version and follow the semantic
// versioning 2.0.0 spec (https://semver.org/).
var (
	// Version is the application version per the semantic versioning 2.0.0
	// spec (https://semver.org/).
	//
	// It is defined as a variable so it can be overridden during the build
	// process with:
	// '-ldflags "-X github.com/launchkit/vrfd/internal/version.Version=fullsemver"'
	// if needed.
	//
	// It MUST be a full semantic version or the package will panic at
	// runtime.  The pre-release and build metadata portions MUST only contain
	// characters from semanticAlphabet.
	Version = "0.1.0-pre"

	// NOTE: The following values are set via init by parsing the above Version
	// string.

	// These fields are the individual semantic version components that define
	// the application version.
	Major         uint
	Minor         uint
	Patch         uint
	PreRelease    string
	BuildMetadata string
)

// SemVer houses the components of a semantic version.
type SemVer struct {
	Major      uint
	Minor      uint
	Patch      uint
	PreRelease string
	Build      string
}

// String returns the semantic version in its canonical form.
func (v SemVer) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.PreRelease != "" {
		sb.WriteByte('-')
		sb.WriteString(v.PreRelease)
	}
	if v.Build != "" {
		sb.WriteByte('+')
		sb.WriteString(v.Build)
	}
	return sb.String()
}

// parseUint converts the passed string to an unsigned integer or returns an
// error if it is invalid.
func parseUint(s string, fieldName string) (uint, error) {
	val, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return 0, fmt.Errorf("malformed semver %s: %w", fieldName, err)
	}
	return uint(val), err
}

// checkSemString returns an error if the passed string contains characters that
// are not in the provided alphabet.
func checkSemString(s, alphabet, fieldName string) error {
	for _, r := range s {
		if !strings.ContainsRune(alphabet, r) {
			return fmt.Errorf("malformed semver %s: %q invalid", fieldName, r)
		}
	}
	return nil
}

// ParseSemVer parses the components of the provided semantic version string.
func ParseSemVer(s string) (SemVer, error) {
	m := semverRE.FindStringSubmatch(s)
	if m == nil {
		err := fmt.Errorf("malformed version string %q: does not conform to "+
			"semver specification", s)
		return SemVer{}, err
	}

	var v SemVer
	var err error
	fields := []struct {
		dst  *uint
		src  string
		name string
	}{
		{&v.Major, m[1], "major"},
		{&v.Minor, m[2], "minor"},
		{&v.Patch, m[3], "patch"},
	}
	for _, f := range fields {
		if *f.dst, err = parseUint(f.src, f.name); err != nil {
			return SemVer{}, err
		}
	}

	v.PreRelease = m[4]
	if err := checkSemString(v.PreRelease, semanticAlphabet, "pre-release"); err != nil {
		return SemVer{}, err
	}
	v.Build = m[5]
	if err := checkSemString(v.Build, semanticAlphabet, "buildmetadata"); err != nil {
		return SemVer{}, err
	}
	return v, nil
}

func init() {
	v, err := ParseSemVer(Version)
	if err != nil {
		panic(err)
	}
	Major, Minor, Patch = v.Major, v.Minor, v.Patch
	PreRelease, BuildMetadata = v.PreRelease, v.Build
}

// String returns the application version as a properly formed string per the
// semantic versioning 2.0.0 spec (https://semver.org/).
func String() string {
	return Version
}

// Full returns the application version with the VCS commit the binary was
// built from appended as build metadata when the version does not already
// carry build metadata.
func Full() string {
	return withCommit(Version, BuildMetadata, vcsCommitID())
}

// withCommit appends the commit to the version as build metadata unless the
// version already has build metadata or the commit is unknown.
func withCommit(version, build, commit string) string {
	commit = NormalizeString(commit)
	if build != "" || commit == "" {
		return version
	}
	return version + "+" + commit
}

// NormalizeString returns the passed string stripped of all characters which
// are not valid according to the semantic versioning guidelines for pre-release
// and build metadata strings.  In particular they MUST only contain characters
// in semanticAlphabet.
func NormalizeString(str string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(semanticAlphabet, r) {
			return r
		}
		return -1
	}, str)
}
