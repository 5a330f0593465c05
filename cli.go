package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/nonsonwune/scopequery/export"
	"github.com/nonsonwune/scopequery/models"
	"github.com/nonsonwune/scopequery/nlquery"
	"github.com/nonsonwune/scopequery/rolefilter"
)

// console is the interactive question loop for one admin at a time.
type console struct {
	engine  *nlquery.NLQueryEngine
	scanner *bufio.Scanner
	admin   models.AdminProfile
	last    *nlquery.QueryResponse
}

func newConsole(engine *nlquery.NLQueryEngine, in io.Reader) *console {
	return &console{engine: engine, scanner: bufio.NewScanner(in)}
}

func (c *console) run(ctx context.Context, adminID string) error {
	if adminID != "" {
		admin, err := c.engine.Store().AdminByID(adminID)
		if err != nil {
			return err
		}
		c.admin = admin
	} else if !c.chooseAdmin() {
		return nil
	}

	for {
		c.displayMenu()
		choice, ok := c.readString()
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			c.askQuestion(ctx)
		case "2":
			c.displayScopeStats()
		case "3":
			c.exportLast()
		case "4":
			if !c.chooseAdmin() {
				return nil
			}
		case "5":
			color.Green("Goodbye!")
			return nil
		default:
			color.Red("Invalid choice. Please try again.")
		}
	}
}

func (c *console) displayMenu() {
	color.Cyan("\n=== Student Query Console ===")
	fmt.Printf("Logged in as %s (%s) | Scope: %s\n", c.admin.Name, c.admin.Role, rolefilter.Describe(c.admin))
	fmt.Println("1. Ask a question")
	fmt.Println("2. View scope statistics")
	fmt.Println("3. Export last result")
	fmt.Println("4. Switch admin")
	fmt.Println("5. Exit")
	fmt.Print("\nEnter your choice (1-5): ")
}

// chooseAdmin lists the admins and reads a selection. It returns false on end of input.
func (c *console) chooseAdmin() bool {
	admins := c.engine.Store().Admins()
	if len(admins) == 0 {
		color.Red("No admin profiles loaded.")
		return false
	}

	for {
		color.Cyan("\n=== Select Admin ===")
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"#", "Admin ID", "Name", "Role", "Scope"})
		for i, a := range admins {
			table.Append([]string{strconv.Itoa(i + 1), a.AdminID, a.Name, string(a.Role), rolefilter.Describe(a)})
		}
		table.Render()
		fmt.Printf("Enter your choice (1-%d): ", len(admins))

		input, ok := c.readString()
		if !ok {
			return false
		}
		n, err := strconv.Atoi(input)
		if err != nil || n < 1 || n > len(admins) {
			color.Red("Invalid choice. Please try again.")
			continue
		}
		c.admin = admins[n-1]
		c.last = nil
		color.Green("Logged in as %s", c.admin.Name)
		return true
	}
}

func (c *console) askQuestion(ctx context.Context) {
	fmt.Print("Ask a question about your students: ")
	question, ok := c.readString()
	if !ok || question == "" {
		return
	}

	resp, err := c.engine.ProcessQuery(ctx, c.admin, question)
	if err != nil {
		var parseErr *models.QueryParseError
		if errors.As(err, &parseErr) {
			color.Red("%s", parseErr.UserMessage())
			return
		}
		color.Red("Error: %v", err)
		return
	}
	c.last = resp

	if resp.Spec != nil {
		for _, d := range resp.Spec.Dropped {
			color.Yellow("Ignored part of the question (%s): %s", d.Field, d.Reason)
		}
	}
	displayResult(resp.Result)
	if resp.Notice != "" {
		color.Yellow("%s", resp.Notice)
	}
}

func displayResult(rs *models.ResultSet) {
	if rs.Empty != nil {
		color.Yellow("\n%s", rs.Empty.Message())
		return
	}
	if rs.IsCount() {
		color.Green("\nCount: %d", rs.Count)
		return
	}

	color.Yellow("\n%s", rs.Summary())
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(rs.Columns)
	for _, row := range rs.Rows() {
		table.Rich(row, cellColors(rs.Columns, row))
	}
	table.Render()
}

// cellColors highlights low and high scores and pending homework.
func cellColors(columns, row []string) []tablewriter.Colors {
	colors := make([]tablewriter.Colors, len(row))
	for i, col := range columns {
		switch col {
		case models.FieldQuizScore:
			score, _ := strconv.Atoi(row[i])
			if score >= 80 {
				colors[i] = tablewriter.Colors{tablewriter.FgGreenColor}
			} else if score < 50 {
				colors[i] = tablewriter.Colors{tablewriter.FgRedColor}
			}
		case models.FieldHomeworkStatus:
			if row[i] == string(models.HomeworkPending) {
				colors[i] = tablewriter.Colors{tablewriter.FgRedColor}
			}
		}
	}
	return colors
}

func (c *console) displayScopeStats() {
	stats := rolefilter.Stats(c.engine.Store().Students(), c.admin)

	color.Yellow("\nScope: %s", rolefilter.Describe(c.admin))
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Total Students", strconv.Itoa(stats.Total)})
	table.Append([]string{"Homework Submitted", strconv.Itoa(stats.HomeworkSubmitted)})
	table.Append([]string{"Homework Pending", strconv.Itoa(stats.HomeworkPending)})
	table.Append([]string{"Average Score", fmt.Sprintf("%.1f", stats.AverageScore)})
	table.Append([]string{"Highest Score", strconv.Itoa(stats.HighestScore)})
	table.Append([]string{"Lowest Score", strconv.Itoa(stats.LowestScore)})
	table.Render()
}

func (c *console) exportLast() {
	if c.last == nil {
		color.Red("Ask a question first.")
		return
	}
	def := export.Filename(c.last.QueryID, export.FormatCSV)
	fmt.Printf("Enter file name (.csv or .xlsx) [%s]: ", def)
	path, ok := c.readString()
	if !ok {
		return
	}
	if path == "" {
		path = def
	}
	if err := export.WriteFile(path, c.last.Result); err != nil {
		color.Red("Error exporting results: %v", err)
		return
	}
	color.Green("Exported results to %s", path)
}

// readString reads one trimmed line. It returns false at end of input.
func (c *console) readString() (string, bool) {
	if !c.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.scanner.Text()), true
}
