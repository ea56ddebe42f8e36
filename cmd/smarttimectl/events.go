package main

import (
	"fmt"
	"net/url"
	"time"

	"smart_time/internal/service"
	"smart_time/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func eventsCmd() *cobra.Command {
	var (
		addr   string
		userID int64
		count  int
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow the live event stream of a user",
		Long: `Connect to the server's /ws endpoint with a token signed for --user
and print every event frame until interrupted or --count frames arrived.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if _, err := loadConfig(); err != nil {
				return err
			}
			token, err := service.GenerateJWT(userID)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}

			u, err := url.Parse(addr)
			if err != nil {
				return fmt.Errorf("address: %w", err)
			}
			q := u.Query()
			q.Set("token", token)
			u.RawQuery = q.Encode()

			conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
			if err != nil {
				return fmt.Errorf("dial %s: %w", addr, err)
			}
			defer conn.Close()

			go func() {
				<-ctx.Done()
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				_ = conn.Close()
			}()

			for seen := 0; count <= 0 || seen < count; seen++ {
				var env ws.Envelope
				if err := conn.ReadJSON(&env); err != nil {
					if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
						return nil
					}
					return fmt.Errorf("read: %w", err)
				}

				data := "-"
				if len(env.Data) > 0 {
					data = string(env.Data)
				}
				fmt.Fprintf(out, "%s %-18s %s\n", env.At.Format(time.TimeOnly), env.Type, data)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "ws://127.0.0.1:8080/ws", "websocket endpoint")
	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "user id to sign the token for")
	cmd.Flags().IntVarP(&count, "count", "c", 0, "stop after this many frames (0 = until interrupted)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
