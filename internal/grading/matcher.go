package grading

import "strings"

// MatchChoice reports whether a multiple-choice answer matches the key.
// Both sides are normalized; there is no partial credit.
func MatchChoice(student, key string) bool {
	return NormalizeAnswer(student) == NormalizeAnswer(key)
}

// MatchIdentification applies the loose matching rules for free-text
// answers. After normalization an exact match wins; otherwise the answer
// must have the same word count as the key, and every positional word pair
// must be a near match. There is no insertion or deletion tolerance:
// "Isaac Newton" never matches a key of "Newton".
func MatchIdentification(student, key string) bool {
	s := NormalizeAnswer(student)
	k := NormalizeAnswer(key)
	if s == k {
		return true
	}

	sw := strings.Fields(s)
	kw := strings.Fields(k)
	if len(sw) != len(kw) {
		return false
	}
	for i := range kw {
		if !nearMatch(sw[i], kw[i]) {
			return false
		}
	}
	return true
}

// nearMatch accepts exact words, singular-form equality, and minor trailing
// typos: for words of at least 5 characters on both sides, one may be a
// prefix of the other as long as the lengths differ by at most one.
func nearMatch(a, b string) bool {
	if a == b {
		return true
	}
	if Singularize(a) == Singularize(b) {
		return true
	}
	if len(a) >= 5 && len(b) >= 5 && absDiff(len(a), len(b)) <= 1 {
		return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
	}
	return false
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// MatchEnumeration counts how many answer-key items the student's list
// covers. Matching is greedy and unordered, and a student item is consumed
// by at most one key item. When every item on both sides is a true/false
// token the comparison switches to positional boolean mode instead, so
// true/false sequences entered as enumerations keep their order semantics.
func MatchEnumeration(studentItems, keyItems []string) int {
	student := make([]string, len(studentItems))
	for i, item := range studentItems {
		student[i] = NormalizeForEnumeration(item)
	}
	key := make([]string, len(keyItems))
	for i, item := range keyItems {
		key[i] = NormalizeForEnumeration(item)
	}

	if allBoolean(key) && allBoolean(student) {
		return matchBooleanSequence(student, key)
	}

	used := make([]bool, len(student))
	matched := 0
	for _, keyItem := range key {
		variants := keyVariants(keyItem)
		for i, studentItem := range student {
			if used[i] || studentItem == "" {
				continue
			}
			if itemMatches(studentItem, variants) {
				used[i] = true
				matched++
				break
			}
		}
	}
	return matched
}

// keyVariants expands a normalized key item into its acceptable forms: the
// item itself; each slash-delimited alternative plus the alternatives joined
// with spaces; and the space-removed form for multi-word items.
func keyVariants(item string) []string {
	variants := []string{item}
	if strings.Contains(item, "/") {
		alts := strings.Split(item, "/")
		for _, alt := range alts {
			if alt = strings.TrimSpace(alt); alt != "" {
				variants = append(variants, alt)
			}
		}
		variants = append(variants, strings.Join(alts, " "))
	}
	if strings.Contains(item, " ") {
		variants = append(variants, strings.ReplaceAll(item, " ", ""))
	}
	return variants
}

func itemMatches(student string, variants []string) bool {
	for _, v := range variants {
		if v == "" {
			continue
		}
		if student == v {
			return true
		}
		shorter, longer := student, v
		if len(v) < len(student) {
			shorter, longer = v, student
		}
		if len(shorter) >= 3 && strings.Contains(longer, shorter) {
			return true
		}
		if len(shorter) >= 4 && (strings.HasPrefix(longer, shorter) || strings.HasSuffix(longer, shorter)) {
			return true
		}
	}
	return false
}

// matchBooleanSequence compares item i of the student list against item i of
// the key list, up to the shorter list. Order matters and items are never
// reused.
func matchBooleanSequence(student, key []string) int {
	n := len(key)
	if len(student) < n {
		n = len(student)
	}
	matched := 0
	for i := 0; i < n; i++ {
		sv, _ := booleanToken(student[i])
		kv, _ := booleanToken(key[i])
		if sv == kv {
			matched++
		}
	}
	return matched
}

func allBoolean(items []string) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if _, ok := booleanToken(item); !ok {
			return false
		}
	}
	return true
}

func booleanToken(item string) (bool, bool) {
	switch item {
	case "true", "t":
		return true, true
	case "false", "f":
		return false, true
	}
	return false, false
}
