package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "auth":
		handleAuth(args)
	case "task":
		handleTask(args)
	case "admin":
		handleAdmin(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tasktracker auth <register|login|logout|who>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "register":
		registerUser(args[1:])
	case "login":
		loginUser(args[1:])
	case "logout":
		logoutUser()
	case "who":
		whoAmI()
	default:
		fmt.Printf("unknown auth command: %s\n", subCmd)
	}
}

func handleTask(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tasktracker task <list|add|show|edit|start|done|todo|rm>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "list":
		listTasks(args[1:])
	case "add":
		addTask(args[1:])
	case "show":
		showTask(args[1:])
	case "edit":
		editTask(args[1:])
	case "start":
		setTaskStatus(args[1:], "in-progress")
	case "done":
		setTaskStatus(args[1:], "completed")
	case "todo":
		setTaskStatus(args[1:], "todo")
	case "rm":
		removeTask(args[1:])
	default:
		fmt.Printf("unknown task command: %s\n", subCmd)
	}
}

func handleAdmin(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tasktracker admin <users|rmuser>")
		return
	}

	subCmd := args[0]
	switch subCmd {
	case "users":
		listUsers(args[1:])
	case "rmuser":
		removeUser(args[1:])
	default:
		fmt.Printf("unknown admin command: %s\n", subCmd)
	}
}

// Auth commands
func registerUser(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *name == "" || *email == "" || *password == "" {
		fmt.Println("Error: name, email, and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{
		"name":     *name,
		"email":    *email,
		"password": *password,
	}

	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/register", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 201 {
		fmt.Printf("✓ Registered: %s\n", *name)
		if token, ok := result["token"].(string); ok {
			saveToken(token)
		}
	} else {
		fmt.Printf("✗ Registration failed: %v\n", result["error"])
	}
}

func loginUser(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	password := fs.String("password", "", "password")

	fs.Parse(args)

	if *name == "" || *password == "" {
		fmt.Println("Error: name and password are required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"name": *name, "password": *password}
	data, _ := json.Marshal(payload)
	resp, err := http.Post(getAPIURL()+"/auth/login", "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode == 200 {
		if token, ok := result["token"].(string); ok {
			saveToken(token)
			fmt.Printf("✓ Logged in as: %s\n", *name)
		}
	} else {
		fmt.Printf("✗ Login failed: %v\n", result["error"])
	}
}

func logoutUser() {
	os.Remove(tokenFile())
	fmt.Println("✓ Logged out")
}

func whoAmI() {
	resp, err := doGet("/auth/me")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		fmt.Println("Not logged in")
		return
	}
	var me map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&me)
	fmt.Printf("✓ Logged in as %v <%v>\n", me["name"], me["email"])
}

// Task commands
func listTasks(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	priority := fs.String("priority", "", "filter by priority (low, medium, high)")
	search := fs.String("q", "", "search in title and description")
	sortKey := fs.String("sort", "", "sort by title, priority or due_date")

	fs.Parse(args)

	path := "/tasks?"
	if *priority != "" {
		path += "priority=" + *priority + "&"
	}
	if *search != "" {
		path += "q=" + *search + "&"
	}
	if *sortKey != "" {
		path += "sort=" + *sortKey
	}

	resp, err := doGet(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printError(resp)
		return
	}

	var result struct {
		Tasks   []map[string]interface{} `json:"tasks"`
		Summary struct {
			Total      int `json:"total"`
			Completed  int `json:"completed"`
			Pending    int `json:"pending"`
			InProgress int `json:"inProgress"`
		} `json:"summary"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE")
	for _, t := range result.Tasks {
		due := t["dueDate"]
		if due == nil {
			due = "-"
		}
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", t["id"], t["title"], t["status"], t["priority"], due)
	}
	w.Flush()
	fmt.Printf("\n%d total, %d completed, %d in progress, %d pending\n",
		result.Summary.Total, result.Summary.Completed, result.Summary.InProgress, result.Summary.Pending)
}

func addTask(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "task title")
	description := fs.String("desc", "", "task description")
	priority := fs.String("priority", "", "priority (low, medium, high)")
	due := fs.String("due", "", "due date (YYYY-MM-DD)")

	fs.Parse(args)

	if *title == "" {
		fmt.Println("Error: title is required")
		fs.PrintDefaults()
		return
	}

	payload := map[string]string{"title": *title}
	if *description != "" {
		payload["description"] = *description
	}
	if *priority != "" {
		payload["priority"] = *priority
	}
	if *due != "" {
		payload["dueDate"] = *due
	}

	resp, err := doJSON("POST", "/tasks", payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 201 {
		printError(resp)
		return
	}
	var task map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&task)
	fmt.Printf("✓ Task %v created: %v\n", task["id"], task["title"])
}

func showTask(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tasktracker task show <task-id>")
		return
	}

	resp, err := doGet("/tasks/" + args[0])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printError(resp)
		return
	}
	var task map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&task)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%v\n", task["id"])
	fmt.Fprintf(w, "Title:\t%v\n", task["title"])
	if task["description"] != nil {
		fmt.Fprintf(w, "Description:\t%v\n", task["description"])
	}
	fmt.Fprintf(w, "Status:\t%v\n", task["status"])
	fmt.Fprintf(w, "Priority:\t%v\n", task["priority"])
	if task["dueDate"] != nil {
		fmt.Fprintf(w, "Due:\t%v\n", task["dueDate"])
	}
	fmt.Fprintf(w, "Created:\t%v\n", task["createdAt"])
	if task["completedAt"] != nil {
		fmt.Fprintf(w, "Completed:\t%v\n", task["completedAt"])
	}
	w.Flush()
}

func editTask(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tasktracker task edit <task-id> [options]")
		return
	}
	id := args[0]

	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	title := fs.String("title", "", "new title")
	description := fs.String("desc", "", "new description")
	priority := fs.String("priority", "", "new priority")
	due := fs.String("due", "", "new due date (YYYY-MM-DD)")

	fs.Parse(args[1:])

	payload := map[string]string{}
	if *title != "" {
		payload["title"] = *title
	}
	if *description != "" {
		payload["description"] = *description
	}
	if *priority != "" {
		payload["priority"] = *priority
	}
	if *due != "" {
		payload["dueDate"] = *due
	}
	if len(payload) == 0 {
		fmt.Println("Error: nothing to change")
		fs.PrintDefaults()
		return
	}

	resp, err := doJSON("PUT", "/tasks/"+id, payload)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printError(resp)
		return
	}
	fmt.Printf("✓ Task %s updated\n", id)
}

func setTaskStatus(args []string, status string) {
	if len(args) < 1 {
		fmt.Printf("Usage: tasktracker task <start|done|todo> <task-id>\n")
		return
	}
	id := args[0]

	resp, err := doJSON("PUT", "/tasks/"+id+"/status", map[string]string{"status": status})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printError(resp)
		return
	}
	fmt.Printf("✓ Task %s is now %s\n", id, status)
}

func removeTask(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tasktracker task rm <task-id>")
		return
	}

	resp, err := doJSON("DELETE", "/tasks/"+args[0], nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 204 {
		printError(resp)
		return
	}
	fmt.Printf("✓ Task %s removed\n", args[0])
}

// Admin commands
func listUsers(args []string) {
	_ = args
	resp, err := doGet("/users")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		printError(resp)
		return
	}

	var result struct {
		Users []map[string]interface{} `json:"users"`
	}
	json.NewDecoder(resp.Body).Decode(&result)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLES")
	for _, u := range result.Users {
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", u["id"], u["name"], u["email"], u["roles"])
	}
	w.Flush()
}

func removeUser(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: tasktracker admin rmuser <user-id>")
		return
	}

	resp, err := doJSON("DELETE", "/users/"+args[0], nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 204 {
		printError(resp)
		return
	}
	fmt.Printf("✓ User %s removed\n", args[0])
}

// Helper functions
func getAPIURL() string {
	if url := os.Getenv("TASKTRACKER_API"); url != "" {
		return url
	}
	return "http://localhost:8080/api"
}

func tokenFile() string {
	home, _ := os.UserHomeDir()
	return home + "/.tasktracker/token"
}

func saveToken(token string) error {
	home, _ := os.UserHomeDir()
	os.MkdirAll(home+"/.tasktracker", 0700)
	return os.WriteFile(tokenFile(), []byte(token), 0600)
}

func loadToken() string {
	data, _ := os.ReadFile(tokenFile())
	return string(data)
}

func doGet(path string) (*http.Response, error) {
	req, err := http.NewRequest("GET", getAPIURL()+path, nil)
	if err != nil {
		return nil, err
	}
	addAuthHeader(req)
	return http.DefaultClient.Do(req)
}

func doJSON(method, path string, payload interface{}) (*http.Response, error) {
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, getAPIURL()+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	addAuthHeader(req)
	return http.DefaultClient.Do(req)
}

func addAuthHeader(req *http.Request) {
	token := loadToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func printError(resp *http.Response) {
	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if msg, ok := result["error"]; ok {
		fmt.Printf("✗ %v\n", msg)
		return
	}
	fmt.Printf("✗ request failed with status %d\n", resp.StatusCode)
}

func printUsage() {
	fmt.Print(`TaskTracker CLI

Usage:
  tasktracker <command> [options]

Commands:
  auth   User authentication (register, login, logout, who)
  task   Task operations (list, add, show, edit, start, done, todo, rm)
  admin  Admin operations (users, rmuser) - admin access required
  help   Show this help message

Environment Variables:
  TASKTRACKER_API    API endpoint (default: http://localhost:8080/api)

Examples:
  tasktracker auth register -name Alice -email alice@example.com -password 'Passw0rd!'
  tasktracker auth login -name Alice -password 'Passw0rd!'
  tasktracker task add -title "Buy milk" -priority high -due 2026-09-01
  tasktracker task list -sort due_date
  tasktracker task done 3
`)
}
