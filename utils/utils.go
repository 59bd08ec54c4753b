package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ParseArguments converts command-line arguments into a map of flags and values.
// The first non-flag argument is recorded under "folder" so the target directory
// can be passed either bare or as --folder=PATH.
func ParseArguments() map[string]string {
	return parseArgumentList(os.Args[1:])
}

// parseArgumentList is the testable core of ParseArguments
func parseArgumentList(argv []string) map[string]string {
	args := make(map[string]string)

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		// Handle flags with equals sign (--key=value)
		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			flagName := strings.TrimPrefix(parts[0], "--")
			args[flagName] = parts[1]
			continue
		}

		// Handle flags without equals sign (--key value)
		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")

			// Check if this is a boolean flag (no value)
			if i+1 >= len(argv) || strings.HasPrefix(argv[i+1], "--") {
				args[flagName] = "true"
			} else {
				// The next argument is the value
				args[flagName] = argv[i+1]
				i++ // Skip the value in the next iteration
			}
			continue
		}

		// First bare argument is the target directory
		if _, ok := args["folder"]; !ok {
			args["folder"] = arg
		}
	}

	return args
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s FOLDER [options]\n", os.Args[0])
	fmt.Printf("\nCleans up a directory of files recovered by PhotoRec and similar carving tools:\n")
	fmt.Printf("removes empty files and duplicates, strips known junk, rebuilds filenames from\n")
	fmt.Printf("embedded metadata and sorts the survivors into category subdirectories.\n")
	fmt.Printf("\nOptions:\n")
	fmt.Printf("  --folder=PATH     : Target directory (alternative to the positional argument)\n")
	fmt.Printf("  --no-dedup        : Skip exact (byte-identical) deduplication\n")
	fmt.Printf("  --no-image-dedup  : Skip perceptual image deduplication\n")
	fmt.Printf("  --no-text-dedup   : Skip normalized-text deduplication\n")
	fmt.Printf("  --ignore-ext      : Bucket exact dedup candidates by size only, ignoring extensions\n")
	fmt.Printf("  --no-junk         : Do not remove known junk files\n")
	fmt.Printf("  --no-rename       : Do not rebuild filenames from embedded metadata\n")
	fmt.Printf("  --keep-structure  : Keep the directory structure, do not sort into categories\n")
	fmt.Printf("  --no-progress     : Do not print progress lines\n")
	fmt.Printf("  --quiet           : No output at all\n")
	fmt.Printf("  --debug           : Enable debug mode (logs detailed information)\n")
	fmt.Printf("  --logfile=PATH    : Specify custom log file path (default: postrecovery.log)\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s /mnt/recovered\n", os.Args[0])
	fmt.Printf("  %s --folder=/mnt/recovered --ignore-ext --keep-structure --debug\n", os.Args[0])
}

// HasFlag reports whether a boolean flag was passed
func HasFlag(args map[string]string, name string) bool {
	_, ok := args[name]
	return ok
}

// MoveNotReplacing renames a file, appending " (2)", " (3)", … to the target
// name instead of ever replacing an existing file. Returns the path actually
// used.
func MoveNotReplacing(oldPath, newPath string) (string, error) {
	if oldPath == newPath {
		return oldPath, nil
	}

	candidate := newPath
	ext := filepath.Ext(newPath)
	stem := strings.TrimSuffix(newPath, ext)

	for i := 2; ; i++ {
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			if err := os.Rename(oldPath, candidate); err != nil {
				return "", err
			}
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
	}
}
