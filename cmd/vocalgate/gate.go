package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newEnrollCmd() *cobra.Command {
	var (
		user       string
		passphrase string
		src        audioSource
	)
	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Record an utterance and store it as the user's voice profile",
		Long: `Record the user speaking their passphrase and store the resulting
voice profile. The recording must transcribe to the passphrase, otherwise
nothing is stored.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(cmd.ErrOrStderr(), "Recording for %s...\n", a.Recorder.Duration())
			w, err := a.Recorder.Record(cmd.Context(), src.capture(cmd.InOrStdin()))
			if err != nil {
				return err
			}
			res, err := a.Enroll.Enroll(cmd.Context(), user, w, passphrase)
			if err != nil {
				return err
			}
			if !res.OK {
				fmt.Fprintf(cmd.OutOrStdout(), "Enrollment failed: %s\n", res.Message)
				return errAccessDenied
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "username to enroll")
	cmd.Flags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase the user speaks")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("passphrase")
	src.register(cmd)
	return cmd
}

func newAuthCmd() *cobra.Command {
	var (
		user string
		src  audioSource
	)
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Record an utterance and decide whether to grant access",
		Long: `Record the user speaking their passphrase and decide whether to grant
access. The decision is written to the audit log.

The attempt counter lives in the process, so each invocation starts with a
fresh gate: lockout after repeated failures applies only to the long-running
API server (cmd/api), not across separate runs of this command.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(cmd.ErrOrStderr(), "Recording for %s...\n", a.Recorder.Duration())
			w, err := a.Recorder.Record(cmd.Context(), src.capture(cmd.InOrStdin()))
			if err != nil {
				return err
			}
			d, err := a.Gate.Authenticate(cmd.Context(), user, w)
			if err != nil {
				return err
			}
			if !d.Granted {
				fmt.Fprintf(cmd.OutOrStdout(), "❌ Access Denied: %s\n", d.Message)
				return errAccessDenied
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ Access Granted")
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "username to authenticate")
	_ = cmd.MarkFlagRequired("user")
	src.register(cmd)
	return cmd
}

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List enrolled users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			names, err := a.Enroll.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No users enrolled.")
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func newAuditCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the most recent access decisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return errors.New("--limit must be positive")
			}
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			recs, err := a.Audit.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, r := range recs {
				line := fmt.Sprintf("%s - %s", r.Timestamp.Format(time.DateTime), r.Outcome)
				if r.Reason != "" {
					line += " " + string(r.Reason)
				}
				if r.Username != "" {
					line += " " + r.Username
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "number of entries to show")
	return cmd
}
