// Package inbox supplies the raw messages a batch run works through.
package inbox

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefaultLimit is how many of the newest messages a run considers.
const DefaultLimit = 100

var samples = []string{
	"ICICI Bank Credit Card XX7004 debited for INR 624.00 on 26-Aug-25 for Satguru. To dispute call 18001080/SMS BLOCK 7004 to 9215676766",
	"HDFC Bank: Your account XX1234 is debited for INR 150.00 on 25-Aug-25 for Zomato. Available balance: INR 25000.00",
	"BOB UPI: Payment of INR 350.00 to BigBasket on 24-Aug-25. UPI Ref: 712345678904",
	"AXIS Bank UPI: Payment of INR 45.00 to Uber on 23-Aug-25. UPI Ref: 412345678901",
	"KOTAK Bank: Your account debited for INR 899.00 on 22-Aug-25 for Amazon. Available balance: INR 15000.00",
	"PNB Credit Card XX9012 debited for INR 1200.00 on 21-Aug-25 for PVR Cinemas. To dispute call 1800118001",
	"ICICI Bank UPI: Payment of INR 67.50 to Swiggy on 20-Aug-25. UPI Ref: 512345678902",
	"HDFC Bank: Your account XX1234 is debited for INR 3500.00 on 19-Aug-25 for Flipkart. Available balance: INR 21500.00",
	"SBI: UPI payment of INR 25.00 to Metro Card on 18-Aug-25. Balance: INR 8000.00",
	"AXIS Bank Credit Card XX3456 debited for INR 299.00 on 17-Aug-25 for Netflix. Minimum due: INR 5000.00",
	"KOTAK Bank: Your account debited for INR 1800.00 on 16-Aug-25 for Electricity Bill. Available balance: INR 13200.00",
	"ICICI Bank: UPI payment of INR 180.00 to PhonePe on 15-Aug-25 for Mobile Recharge. UPI Ref: 612345678903",
	"HDFC Bank Credit Card XX7890 debited for INR 750.00 on 14-Aug-25 for McDonald's. To dispute call 18002022",
}

// Samples returns the built-in demonstration messages, newest first.
func Samples() []string {
	out := make([]string, len(samples))
	copy(out, samples)
	return out
}

// Load reads up to limit messages from path, newest first. A .json file
// must hold an array of strings; anything else is read one message per
// line. When path is empty, unreadable or holds no messages the built-in
// samples are returned instead.
func Load(path string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if path == "" {
		return truncate(Samples(), limit)
	}

	messages, err := read(path)
	if err != nil {
		slog.Warn("Could not read messages, using built-in samples", "path", path, "error", err)
		return truncate(Samples(), limit)
	}
	if len(messages) == 0 {
		slog.Warn("Message source is empty, using built-in samples", "path", path)
		return truncate(Samples(), limit)
	}

	return truncate(messages, limit)
}

func read(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open message source: %w", err)
	}
	defer func() { _ = f.Close() }()

	var messages []string
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.NewDecoder(f).Decode(&messages); err != nil {
			return nil, fmt.Errorf("failed to decode message array: %w", err)
		}
		return compact(messages), nil
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		messages = append(messages, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return compact(messages), nil
}

func compact(messages []string) []string {
	out := messages[:0]
	for _, m := range messages {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

func truncate(messages []string, limit int) []string {
	if len(messages) > limit {
		return messages[:limit]
	}
	return messages
}
