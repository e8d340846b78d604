// Command test_integration smoke-tests a running review server.
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

func main() {
	baseURL := os.Getenv("EDGEQC_REVIEW_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	client := &http.Client{Timeout: 10 * time.Second}

	fmt.Println("Starting review API smoke test...")

	fmt.Println("1. Summary")
	var summary map[string]int
	if !sendRequest(client, baseURL, http.MethodGet, "/api/summary", nil, http.StatusOK, &summary) {
		fail("summary")
	}
	fmt.Printf("PASSED: summary %v\n", summary)

	fmt.Println("2. Edges per classification")
	for _, c := range []string{"good", "bad", "ambiguous"} {
		want := http.StatusOK
		if summary[c] == 0 {
			want = http.StatusNotFound
		}
		if !sendRequest(client, baseURL, http.MethodGet, "/api/edges/"+c, nil, want, nil) {
			fail("edges " + c)
		}
		if summary[c] > 1 {
			var nav map[string]interface{}
			if !sendRequest(client, baseURL, http.MethodPost, "/api/edges/"+c+"/navigate", map[string]string{"action": "next"}, http.StatusOK, &nav) {
				fail("navigate " + c)
			}
			if nav["success"] != true {
				fail("navigate " + c + " did not advance")
			}
		}
	}
	fmt.Println("PASSED: edges")

	fmt.Println("3. Invalid classification")
	if !sendRequest(client, baseURL, http.MethodGet, "/api/edges/passed", nil, http.StatusBadRequest, nil) {
		fail("invalid classification")
	}
	fmt.Println("PASSED: invalid classification")

	fmt.Println("4. Reload")
	if !sendRequest(client, baseURL, http.MethodGet, "/api/reload", nil, http.StatusOK, nil) {
		fail("reload")
	}
	fmt.Println("PASSED: reload")
}

func fail(step string) {
	fmt.Printf("FAILED: %s\n", step)
	os.Exit(1)
}

func sendRequest(client *http.Client, baseURL, method, endpoint string, payload interface{}, wantStatus int, out interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Error encoding payload: %v\n", err)
			return false
		}
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		fmt.Printf("%s %s: status %d, want %d: %s\n", method, endpoint, resp.StatusCode, wantStatus, string(respBody))
		return false
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			fmt.Printf("Error decoding response: %v\n", err)
			return false
		}
	}
	return true
}
