package security

import (
	"bufio"
	"crypto/sha1"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const pwnedBaseURL = "https://api.pwnedpasswords.com/range"

// PwnedClient queries the Have I Been Pwned range API. Only the first five
// characters of the password's SHA-1 ever leave the process (k-anonymity).
type PwnedClient struct {
	baseURL string
	httpc   *http.Client
}

func NewPwnedClient() *PwnedClient {
	return &PwnedClient{
		baseURL: pwnedBaseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Count returns how many times the password appears in known breaches.
func (c *PwnedClient) Count(password string) (int, error) {
	sum := fmt.Sprintf("%X", sha1.Sum([]byte(password)))
	prefix, suffix := sum[:5], sum[5:]

	resp, err := c.httpc.Get(c.baseURL + "/" + prefix)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("pwned range lookup returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		rest, ok := strings.CutPrefix(line, suffix+":")
		if !ok {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return 0, fmt.Errorf("pwned range lookup: bad count in %q", line)
		}
		return count, nil
	}
	return 0, scanner.Err()
}
