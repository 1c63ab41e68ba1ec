package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/catsite/internal/errors"
	"github.com/vango-dev/catsite/pkg/form"
)

func contactCmd() *cobra.Command {
	var c form.Contact

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Validate a consultation request",
		Long: `Run the contact form validation on the given values and print
the message the page would show.

Examples:
  catsite contact --name="Asha Rao" --phone=9876543210 --email=asha@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := c.Validate(); err != nil {
				failure(out, "%s", form.ValidationMessage(err))
				return errors.New("E141").WithDetail(form.ValidationMessage(err)).Wrap(err)
			}
			success(out, "%s", form.MsgSubmitted)
			return nil
		},
	}

	cmd.Flags().StringVar(&c.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&c.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&c.Email, "email", "", "Email address")

	return cmd
}
