// replay-webhook posts a saved Meta webhook payload to a running
// server, signing it with the app secret when one is configured.
// Useful for reproducing flow bugs from production payload dumps.
package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"clinic-engage/internal/config"
)

func main() {
	target := flag.String("url", "http://localhost:8080/webhook", "webhook endpoint to post to")
	file := flag.String("file", "", "path to a JSON payload dump (required)")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	payload, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read payload: %v", err)
	}

	cfg := config.LoadConfig()

	req, err := http.NewRequest(http.MethodPost, *target, bytes.NewReader(payload))
	if err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if cfg.WhatsAppAppSecret != "" {
		mac := hmac.New(sha256.New, []byte(cfg.WhatsAppAppSecret))
		mac.Write(payload)
		req.Header.Set("X-Hub-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("%d %s\n", resp.StatusCode, string(body))
}
