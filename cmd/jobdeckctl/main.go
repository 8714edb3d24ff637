// jobdeckctl is a small terminal client for the job source. It prints
// the grouped queue the same way the drawer renders it, and can send the
// same commands (delete, clear, move, force-start) without a running
// jobdeck server.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"jobdeck/internal/config"
	"jobdeck/internal/jobsource"
	"jobdeck/internal/viewmodel"
)

func main() {
	deleteID := flag.Int64("delete", 0, "delete the job with this ID")
	clearStatus := flag.String("clear", "", "clear all jobs in this status group")
	action := flag.String("action", "", "queue action: move_top, move_bottom or force_start")
	jobID := flag.Int64("job", 0, "job ID for -action")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var source jobsource.Source
	if cfg.Source.File != "" {
		source = jobsource.NewFileSource(cfg.Source.File)
	} else {
		source = jobsource.NewClient(cfg.Source.URL, cfg.Source.APIKey)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch {
	case *deleteID != 0:
		if err := source.DeleteJob(ctx, *deleteID); err != nil {
			log.Fatalf("Delete failed: %v", err)
		}
		fmt.Printf("Job %d deleted.\n", *deleteID)
	case *clearStatus != "":
		if err := source.ClearQueue(ctx, *clearStatus); err != nil {
			log.Fatalf("Clear failed: %v", err)
		}
		fmt.Printf("Cleared %s jobs.\n", *clearStatus)
	case *action != "":
		if *jobID == 0 {
			fmt.Fprintln(os.Stderr, "-action requires -job")
			os.Exit(2)
		}
		if err := source.ActionOnJob(ctx, *jobID, *action); err != nil {
			log.Fatalf("Action failed: %v", err)
		}
		fmt.Printf("Action %s sent for job %d.\n", *action, *jobID)
	}

	printQueue(ctx, source)
}

func printQueue(ctx context.Context, source jobsource.Source) {
	body, err := source.FetchJobs(ctx)
	if err != nil {
		log.Fatalf("Could not fetch jobs: %v", err)
	}

	snap := viewmodel.BuildSnapshot(body, time.Now())
	if snap.LoadError != "" {
		log.Fatalf("Could not load jobs: %s", snap.LoadError)
	}
	if snap.Diagnostic != "" {
		// The source answered with something that isn't a job list;
		// show it verbatim.
		fmt.Println(snap.Diagnostic)
		return
	}
	if snap.Empty() {
		fmt.Println("No jobs.")
		return
	}

	for _, group := range snap.Groups {
		fmt.Printf("%s (%d)\n", group.Status, group.Count)
		for _, job := range group.Jobs {
			line := fmt.Sprintf("  %-30s %s", job.Name, job.DisplayTime.Format("2006-01-02 15:04:05"))
			if job.IsProgress {
				line += fmt.Sprintf("  %3d%%", job.Percent)
				if job.ProgressMessage != "" {
					line += "  " + job.ProgressMessage
				}
			}
			fmt.Println(line)
		}
	}
}
