// lead-report prints the Zoho lead statistics summary to stdout.
// Run it from cron to get a daily funnel snapshot.
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"clinic-engage/internal/config"
	"clinic-engage/internal/zoho"
)

func main() {
	asJSON := flag.Bool("json", false, "print raw JSON instead of a table")
	days := flag.Int("days", 0, "restrict to leads created in the last N days (0 = all)")
	flag.Parse()

	cfg := config.LoadConfig()
	client := zoho.NewClient(cfg)

	stats, err := client.GetStatistics(*days)
	if err != nil {
		log.Fatalf("Failed to fetch lead statistics: %v", err)
	}

	if *asJSON {
		fmt.Printf(`{"total_leads":%d,"q5_events":%d,"termination_events":%d,"pending_leads":%d}`+"\n",
			stats.TotalLeads, stats.Q5Events, stats.TerminationEvents, stats.PendingLeads)
		return
	}

	fmt.Printf("WhatsApp lead funnel\n")
	fmt.Printf("  total leads:        %d\n", stats.TotalLeads)
	fmt.Printf("  callbacks requested: %d\n", stats.Q5Events)
	fmt.Printf("  declined callback:   %d\n", stats.TerminationEvents)
	fmt.Printf("  pending:             %d\n", stats.PendingLeads)

	fmt.Println("\nBy status:")
	printSorted(stats.ByStatus)
	fmt.Println("\nBy city:")
	printSorted(stats.ByCity)
	fmt.Println("\nBy day:")
	printSorted(stats.Daily)
}

func printSorted(m map[string]int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-24s %d\n", k, m[k])
	}
}
