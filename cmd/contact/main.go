// Command contact is a terminal front end for the portfolio contact form.
//
//	contact [-api URL]              fill in and send the form
//	contact [-api URL] -list TOKEN  print stored submissions
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/samber/lo"

	"github.com/portfolio/backend/internal/contactform"
	"github.com/portfolio/backend/internal/validation"
	"github.com/portfolio/backend/pkg/client"
)

var labels = map[string]string{
	validation.FieldName:    "Name",
	validation.FieldEmail:   "Email",
	validation.FieldSubject: "Subject",
	validation.FieldMessage: "Message",
}

func main() {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	apiURL := flag.String("api", config.APIURL, "API base URL")
	listToken := flag.String("list", "", "list submissions with this bearer token instead of sending one")
	flag.Parse()

	c := client.New(*apiURL, nil)
	ctx := context.Background()

	if *listToken != "" {
		if err := list(ctx, os.Stdout, c, *listToken); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	form := contactform.New(submitter(c))
	defer form.Close()
	if err := run(ctx, bufio.NewScanner(os.Stdin), os.Stdout, form); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// submitter sends form fields through the API client.
func submitter(c *client.Client) contactform.Submitter {
	return contactform.SubmitterFunc(func(ctx context.Context, f validation.Fields) error {
		_, err := c.SubmitContact(ctx, client.ContactRequest{
			Name:    f.Name,
			Email:   f.Email,
			Subject: f.Subject,
			Message: f.Message,
		})
		return err
	})
}

// run prompts for every field, then for the failing ones, until the form is
// sent or the visitor declines to retry.
func run(ctx context.Context, in *bufio.Scanner, out io.Writer, form *contactform.Form) error {
	ask := validation.FieldOrder
	for {
		for _, field := range ask {
			if msg, ok := form.Errors()[field]; ok {
				fmt.Fprintf(out, "  ! %s\n", msg)
			}
			current := form.Fields().Get(field)
			if current != "" {
				fmt.Fprintf(out, "%s [%s]: ", labels[field], current)
			} else {
				fmt.Fprintf(out, "%s: ", labels[field])
			}
			if !in.Scan() {
				return io.ErrUnexpectedEOF
			}
			if line := in.Text(); line != "" || current == "" {
				form.Set(field, line)
			}
		}

		sendCtx, cancel := context.WithTimeout(ctx, time.Minute)
		err := form.Submit(sendCtx)
		cancel()

		switch {
		case err == nil:
			fmt.Fprintln(out, form.StatusMessage())
			return nil
		case errors.Is(err, contactform.ErrInvalid):
			errs := form.Errors()
			ask = lo.Filter(validation.FieldOrder, func(field string, _ int) bool {
				_, bad := errs[field]
				return bad
			})
		default:
			fmt.Fprintln(out, form.StatusMessage())
			fmt.Fprint(out, "Retry? [y/N]: ")
			if !in.Scan() || !strings.EqualFold(strings.TrimSpace(in.Text()), "y") {
				return err
			}
			ask = nil
		}
	}
}

func list(ctx context.Context, out io.Writer, c *client.Client, token string) error {
	resp, err := c.ListContacts(ctx, token)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d submission(s)\n", resp.Count)
	for _, line := range lo.Map(resp.Data, func(s client.Contact, _ int) string {
		return fmt.Sprintf("%s  %-24s %-30s %s", s.CreatedAt.Local().Format(time.DateTime), s.Name, s.Email, s.Subject)
	}) {
		fmt.Fprintln(out, line)
	}
	return nil
}
