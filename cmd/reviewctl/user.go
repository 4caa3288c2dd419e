package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/database"
)

func newUserCmd(a *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "用户管理",
	}
	cmd.AddCommand(newUserCreateCmd(a))
	return cmd
}

func newUserCreateCmd(a *cli) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "创建用户（不传 --password 时从终端读取）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				p, err := readPassword(a.in, a.out, "密码: ")
				if err != nil {
					return fmt.Errorf("读取密码失败: %w", err)
				}
				password = p
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			u, err := user.NewService(database.NewUserRepository(db)).Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}

			a.printf("用户已创建: id=%d email=%s\n", u.ID, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "昵称")
	cmd.Flags().StringVar(&email, "email", "", "邮箱")
	cmd.Flags().StringVar(&password, "password", "", "密码（会留在shell历史中，建议交互输入）")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// readPassword 终端输入时不回显；管道输入时读取第一行
func readPassword(in io.Reader, out io.Writer, prompt string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
