package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"postrecovery/classify"
	"postrecovery/dedup"
	"postrecovery/imageprocessor"
	"postrecovery/inventory"
	"postrecovery/junk"
	"postrecovery/logging"
	"postrecovery/renamer"
	"postrecovery/signalhandler"
	"postrecovery/sorter"
	"postrecovery/utils"
)

// textMatcher scopes the normalized-text deduplication phase
var textMatcher = inventory.Suffixes(".txt", ".log", ".ini", ".cfg", ".srt", ".md", ".csv")

func main() {
	// Set up proper signal handling
	signalhandler.SetupHandler()

	// Set the optimal number of CPUs to use
	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	// Parse command line arguments into a map
	args := utils.ParseArguments()

	folder, hasFolder := args["folder"]
	if !hasFolder || folder == "" {
		utils.PrintUsage()
		os.Exit(1)
	}

	// Verify the target directory exists and is accessible
	folderInfo, err := os.Stat(folder)
	if err != nil {
		if os.IsNotExist(err) {
			log.Fatalf("Target directory does not exist: %s", folder)
		}
		log.Fatalf("Cannot access target directory: %s (%v)", folder, err)
	}
	if !folderInfo.IsDir() {
		log.Fatalf("Path is not a directory: %s", folder)
	}

	// Setup debug logging if enabled
	if utils.HasFlag(args, "debug") {
		logPath := "postrecovery.log"
		if custom, ok := args["logfile"]; ok && custom != "" {
			logPath = custom
		}
		if err := logging.SetupLogger(logPath); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", logPath)
		}
		defer logging.CloseLogger()
	}

	// Quiet mode gets the no-op reporter; otherwise progress lines are on
	// unless --no-progress asked for summaries only
	var reporter dedup.Reporter
	if utils.HasFlag(args, "quiet") {
		reporter = dedup.NopReporter{}
	} else {
		reporter = dedup.NewConsoleReporter(!utils.HasFlag(args, "no-progress"))
	}

	opts := dedup.DefaultOptions()
	opts.ExactDedup = !utils.HasFlag(args, "no-dedup")
	opts.ImageDedup = !utils.HasFlag(args, "no-image-dedup")
	opts.TextDedup = !utils.HasFlag(args, "no-text-dedup")
	opts.IgnoreExtension = utils.HasFlag(args, "ignore-ext")

	startTime := time.Now()

	// Build the inventory; an unreadable root is the one fatal error
	records, err := inventory.Scan(folder, opts.IgnoreExtension)
	if err != nil {
		log.Fatalf("Error scanning target directory: %v", err)
	}
	reporter.Summary("%d files found", len(records))

	// Remove empty files before anything else looks at sizes
	emptied := inventory.RemoveEmpty(records)
	reporter.Summary("%d empty files removed", emptied)

	// Phases run strictly in sequence; each one works on the survivors of
	// the previous one
	if opts.ExactDedup {
		dedup.RemoveExactDuplicates(records, opts, reporter)
	}

	if !utils.HasFlag(args, "no-junk") {
		removed := junk.RemoveKnownJunk(records)
		reporter.Summary("%d junk files removed", removed)
	}

	rename := !utils.HasFlag(args, "no-rename")
	if rename {
		if fixed := renamer.FixCarverNames(records); fixed > 0 {
			reporter.Summary("%d mangled carver names fixed", fixed)
		}

		// Content analysis runs before the text dedup phase so corrected
		// extensions land the files in the right candidate lists
		analyzed := classify.AnalyzeContent(records, !utils.HasFlag(args, "no-junk"))
		reporter.Summary("%d extensions corrected, %d files renamed from content, %d junk files removed",
			analyzed.Reclassified, analyzed.Renamed, analyzed.Removed)
	}

	if opts.ImageDedup {
		dedup.RemoveImageDuplicates(records, inventory.MatcherFunc(imageprocessor.IsImageFile), opts, reporter)
	}

	if opts.TextDedup {
		dedup.RemoveTextDuplicates(records, textMatcher, opts, reporter)
	}

	if rename {
		r, err := renamer.New()
		if err != nil {
			// Renaming needs the exiftool binary; without it the remaining
			// phases are still worth running
			logging.LogWarning("metadata renaming skipped: %v", err)
			reporter.Summary("Metadata renaming skipped: %v", err)
		} else {
			renamed := r.Apply(records)
			r.Close()
			reporter.Summary("%d files renamed from metadata", renamed)
		}
	}

	if !utils.HasFlag(args, "keep-structure") {
		moved := sorter.Sort(folder)
		reporter.Summary("%d files sorted into categories", moved)
	}

	reporter.Summary("Done in %v.", time.Since(startTime).Round(time.Second))
}
