// roomctl - command line client for the tertulia room service
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

const callerHeader = "X-Chat-Name"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("TERTULIA_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	c := newClient(baseURL, os.Getenv("TERTULIA_NAME"))

	switch os.Args[1] {
	case "join":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: roomctl join <name>")
			os.Exit(1)
		}
		var p participant
		err := c.do(http.MethodPost, "/api/v1/participants", map[string]string{"name": os.Args[2]}, &p)
		exitOnError(err)
		fmt.Printf("Joined as: %s\n", p.Name)
		fmt.Printf("Export TERTULIA_NAME=%s to identify follow-up commands.\n", p.Name)

	case "participants":
		var resp struct {
			Participants []participant `json:"participants"`
		}
		err := c.do(http.MethodGet, "/api/v1/participants", nil, &resp)
		exitOnError(err)
		printParticipants(resp.Participants)

	case "messages":
		limit := 50
		if len(os.Args) > 2 {
			n, err := strconv.Atoi(os.Args[2])
			if err != nil || n <= 0 {
				fmt.Fprintln(os.Stderr, "Usage: roomctl messages [limit]")
				os.Exit(1)
			}
			limit = n
		}
		var resp struct {
			Messages []message `json:"messages"`
		}
		err := c.do(http.MethodGet, fmt.Sprintf("/api/v1/messages?limit=%d", limit), nil, &resp)
		exitOnError(err)
		printMessages(resp.Messages)

	case "post":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: roomctl post <text> [to] [kind]")
			os.Exit(1)
		}
		to := "Todos"
		if len(os.Args) > 3 {
			to = os.Args[3]
		}
		kind := "message"
		if len(os.Args) > 4 {
			kind = os.Args[4]
		}
		var m message
		err := c.do(http.MethodPost, "/api/v1/messages", map[string]string{"to": to, "text": os.Args[2], "kind": kind}, &m)
		exitOnError(err)
		fmt.Printf("Posted: %s\n", m.ID)

	case "search":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: roomctl search <query>")
			os.Exit(1)
		}
		var resp struct {
			Messages []message `json:"messages"`
		}
		err := c.do(http.MethodGet, "/api/v1/messages/search?q="+url.QueryEscape(os.Args[2]), nil, &resp)
		exitOnError(err)
		printMessages(resp.Messages)

	case "heartbeat":
		err := c.do(http.MethodPost, "/api/v1/heartbeat", nil, nil)
		exitOnError(err)
		fmt.Println("alive")

	case "stats":
		var resp map[string]interface{}
		err := c.do(http.MethodGet, "/api/v1/stats", nil, &resp)
		exitOnError(err)
		printJSON(resp)

	case "health":
		err := c.do(http.MethodGet, "/health", nil, nil)
		exitOnError(err)
		fmt.Println("healthy")

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`roomctl - tertulia room client

Usage: roomctl <command> [options]

Commands:
  join <name>             Join the room
  post <text> [to] [kind] Post a message (default: to Todos, kind message)
  messages [limit]        Read visible messages (default limit 50)
  search <query>          Search visible messages
  participants            List who is in the room
  heartbeat               Refresh your presence
  stats                   Room totals and process health
  health                  Check server health

Environment:
  TERTULIA_URL    Server URL (default: http://localhost:8080)
  TERTULIA_NAME   Your participant name, sent as ` + callerHeader)
}

type client struct {
	base string
	name string
	http *http.Client
}

func newClient(base, name string) *client {
	return &client{base: strings.TrimRight(base, "/"), name: name, http: &http.Client{Timeout: 10 * time.Second}}
}

func (c *client) do(method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.name != "" {
		req.Header.Set(callerHeader, c.name)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	if out != nil && len(data) > 0 {
		return json.Unmarshal(data, out)
	}
	return nil
}

type participant struct {
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
	LastSeen time.Time `json:"lastSeen"`
}

type message struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Kind string `json:"kind"`
	Time string `json:"time"`
}

func newTable() *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func printParticipants(list []participant) {
	table := newTable()
	table.SetHeader([]string{"Name", "Joined", "Last Seen"})
	for _, p := range list {
		table.Append([]string{p.Name, p.JoinedAt.Local().Format("15:04:05"), p.LastSeen.Local().Format("15:04:05")})
	}
	table.Render()
}

func printMessages(list []message) {
	table := newTable()
	table.SetHeader([]string{"Time", "From", "To", "Kind", "Text"})
	for _, m := range list {
		kind := m.Kind
		switch m.Kind {
		case "status":
			kind = color.New(color.FgYellow).Render(m.Kind)
		case "private_message":
			kind = color.New(color.FgMagenta).Render(m.Kind)
		}
		table.Append([]string{m.Time, m.From, m.To, kind, m.Text})
	}
	table.Render()
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
