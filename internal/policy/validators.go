package policy

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultMinLength     = 8
	DefaultMaxSimilarity = 0.7
)

// ---- minimum length ----

type minimumLength struct{ n int }

func MinimumLength(n int) Validator {
	if n <= 0 {
		n = DefaultMinLength
	}
	return minimumLength{n: n}
}

func (v minimumLength) Validate(password string, _ []Attribute) string {
	if utf8.RuneCountInString(password) < v.n {
		return fmt.Sprintf("This password is too short. It must contain at least %d characters.", v.n)
	}
	return ""
}

// ---- numeric ----

type numeric struct{}

func Numeric() Validator { return numeric{} }

func (numeric) Validate(password string, _ []Attribute) string {
	if password == "" {
		return ""
	}
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return ""
		}
	}
	return "This password is entirely numeric."
}

// ---- common passwords ----

//go:embed common_passwords.txt
var defaultCommonList string

type commonPassword struct {
	set map[string]struct{}
}

// DefaultCommonPasswords returns the embedded list.
func DefaultCommonPasswords() map[string]struct{} {
	set, _ := ReadCommonPasswords(strings.NewReader(defaultCommonList))
	return set
}

// ReadCommonPasswords reads one password per line. Blank lines and lines
// starting with '#' are skipped.
func ReadCommonPasswords(r io.Reader) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.ToLower(strings.TrimSpace(sc.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[line] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// LoadCommonPasswordsFile reads a list from disk.
func LoadCommonPasswordsFile(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open common password list: %w", err)
	}
	defer f.Close()
	return ReadCommonPasswords(f)
}

func CommonPassword(set map[string]struct{}) Validator {
	if set == nil {
		set = map[string]struct{}{}
	}
	return commonPassword{set: set}
}

func (v commonPassword) Validate(password string, _ []Attribute) string {
	if _, ok := v.set[strings.ToLower(strings.TrimSpace(password))]; ok {
		return "This password is too common."
	}
	return ""
}

// ---- similarity to user attributes ----

var nonWord = regexp.MustCompile(`\W+`)

type userAttributeSimilarity struct {
	max float64
}

func UserAttributeSimilarity(maxSimilarity float64) Validator {
	if maxSimilarity < 0.1 {
		maxSimilarity = 0.1
	}
	return userAttributeSimilarity{max: maxSimilarity}
}

func (v userAttributeSimilarity) Validate(password string, attrs []Attribute) string {
	if len(attrs) == 0 {
		return ""
	}
	password = strings.ToLower(password)
	for _, a := range attrs {
		value := strings.ToLower(a.Value)
		if value == "" {
			continue
		}
		parts := append(nonWord.Split(value, -1), value)
		for _, part := range parts {
			if exceedsMaxLengthRatio(password, v.max, part) {
				continue
			}
			if quickRatio(password, part) >= v.max {
				return fmt.Sprintf("The password is too similar to the %s.", a.Label)
			}
		}
	}
	return ""
}

// exceedsMaxLengthRatio skips values so much shorter than the password that
// they cannot reach the similarity threshold.
func exceedsMaxLengthRatio(password string, maxSimilarity float64, value string) bool {
	pwdLen := utf8.RuneCountInString(password)
	valueLen := utf8.RuneCountInString(value)
	lengthBound := maxSimilarity / 2 * float64(pwdLen)
	return pwdLen >= 10*valueLen && float64(valueLen) < lengthBound
}

// quickRatio is an upper bound on sequence similarity: 2*M/T where M counts
// the characters the two strings share as multisets.
func quickRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	avail := make(map[rune]int, len(rb))
	for _, r := range rb {
		avail[r]++
	}
	matches := 0
	for _, r := range ra {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(total)
}
