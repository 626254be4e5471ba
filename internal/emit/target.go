package emit

import (
	"fmt"
	"strings"
)

type Target int

const (
	TypeScript Target = iota + 1
	Swift
	Kotlin
	Dart
)

var targetNames = map[Target]string{
	TypeScript: "typescript",
	Swift:      "swift",
	Kotlin:     "kotlin",
	Dart:       "dart",
}

var targetAliases = map[string]Target{
	"typescript": TypeScript,
	"ts":         TypeScript,
	"swift":      Swift,
	"kotlin":     Kotlin,
	"kt":         Kotlin,
	"dart":       Dart,
}

var targetExtensions = map[Target]string{
	TypeScript: ".ts",
	Swift:      ".swift",
	Kotlin:     ".kt",
	Dart:       ".dart",
}

// Targets lists every supported target in a stable order.
func Targets() []Target {
	return []Target{TypeScript, Swift, Kotlin, Dart}
}

func (t Target) String() string {
	if name, ok := targetNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Target(%d)", int(t))
}

// Extension is the source file extension including the dot.
func (t Target) Extension() string {
	return targetExtensions[t]
}

// ParseTarget accepts a target name or short alias, case insensitive.
func ParseTarget(name string) (Target, error) {
	if target, ok := targetAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return target, nil
	}
	return 0, fmt.Errorf("unknown target %q, want one of typescript, swift, kotlin, dart", name)
}
