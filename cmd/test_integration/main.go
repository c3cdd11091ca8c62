package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const schema = "https://dblp.org/rdf/schema#"

func main() {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	subject := fmt.Sprintf("https://dblp.org/rec/test/Smoke%d", time.Now().Unix())
	key := fmt.Sprintf("test/Smoke%d", time.Now().Unix())
	tuples := []map[string]string{
		{"sub": subject, "pred": "isA", "obj": schema + "Inproceedings"},
		{"sub": subject, "pred": schema + "title", "obj": "A Smoke Test For Alignment"},
		{"sub": subject, "pred": schema + "hasSignature", "obj": "b1", "bpred": "isA", "bobj": schema + "AuthorSignature"},
		{"sub": subject, "pred": schema + "hasSignature", "obj": "b1", "bpred": schema + "signatureDblpName", "bobj": "Ann Smoke"},
		{"sub": subject, "pred": schema + "hasSignature", "obj": "b1", "bpred": schema + "signatureOrdinal", "bobj": "1"},
		{"sub": subject, "pred": schema + "hasSignature", "obj": "b1", "bpred": schema + "signatureCreator", "bobj": "https://dblp.org/pid/00/0000"},
		{"sub": subject, "pred": "http://purl.org/spar/datacite/hasIdentifier", "obj": "i1", "bpred": "isA", "bobj": "http://purl.org/spar/datacite/ResourceIdentifier"},
		{"sub": subject, "pred": "http://purl.org/spar/datacite/hasIdentifier", "obj": "i1", "bpred": "http://purl.org/spar/datacite/usesIdentifierScheme", "bobj": "http://purl.org/spar/datacite/dblp-record"},
		{"sub": subject, "pred": "http://purl.org/spar/datacite/hasIdentifier", "obj": "i1", "bpred": "http://purl.org/spar/literal/hasLiteralValue", "bobj": key},
	}

	// 1. Health
	fmt.Println("1. Checking health...")
	if !sendRequest(baseURL, "GET", "/healthz", nil) {
		fmt.Println("FAILED: Health")
		os.Exit(1)
	}
	fmt.Println("PASSED: Health")

	// 2. Reduce and save
	fmt.Println("2. Reducing tuples...")
	if !sendRequest(baseURL, "POST", "/publications", map[string]interface{}{"tuples": tuples, "save": true}) {
		fmt.Println("FAILED: Reduce")
		os.Exit(1)
	}
	fmt.Println("PASSED: Reduce")

	// 3. Align against an inline note
	fmt.Println("3. Aligning...")
	notes := []map[string]interface{}{{
		"id": "smoke-note",
		"content": map[string]interface{}{
			"title":     "A smoke test for alignment",
			"authors":   []string{"Ann Smoke"},
			"authorids": []string{"~Ann_Smoke1"},
		},
	}}
	if !sendRequest(baseURL, "POST", "/alignments", map[string]interface{}{"notes": notes, "tuples": tuples, "save": true}) {
		fmt.Println("FAILED: Align")
		os.Exit(1)
	}
	fmt.Println("PASSED: Align")

	// 4. Read back
	fmt.Println("4. Reading stored publications...")
	if !sendRequest(baseURL, "GET", "/authors/publications?pid=00/0000", nil) {
		fmt.Println("FAILED: Read back")
		os.Exit(1)
	}
	fmt.Println("PASSED: Read back")
}

func sendRequest(baseURL, method, endpoint string, payload interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}
	fmt.Printf("Response: %s\n", string(respBody))
	return true
}
