package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"ditto/internal/forum"
	"ditto/internal/media"
	"ditto/internal/model"
	"ditto/internal/store"

	"github.com/spf13/cobra"
)

var (
	forumAs          string
	boardDescription string
	subjectBoard     uint
	subjectTitle     string
	subjectBody      string
	subjectPhoto     string
	commentBody      string
	commentReplyTo   uint
	notifyMarkRead   bool
)

// forumCLI carries what every forum subcommand needs.
type forumCLI struct {
	ctx context.Context
	out io.Writer
	st  *store.Store
	svc *forum.Service
}

func withForum(cmd *cobra.Command, fn func(f *forumCLI) error) error {
	cfg := GetConfig()
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(&forumCLI{
		ctx: cmd.Context(),
		out: cmd.OutOrStdout(),
		st:  st,
		svc: forum.NewService(st, media.NewCompressor(cfg.Media.WebPQuality)),
	})
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(n), nil
}

func (f *forumCLI) user(name string) (*model.User, error) {
	u, err := f.st.UserByUsername(f.ctx, name)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", name, err)
	}
	return u, nil
}

// pair resolves the acting user and the user named in the arguments.
func (f *forumCLI) pair(as, name string) (*model.User, *model.User, error) {
	actor, err := f.user(as)
	if err != nil {
		return nil, nil, err
	}
	other, err := f.user(name)
	if err != nil {
		return nil, nil, err
	}
	return actor, other, nil
}

func (f *forumCLI) createUser(name string) error {
	u := &model.User{Username: name}
	if err := f.st.CreateUser(f.ctx, u); err != nil {
		return err
	}
	fmt.Fprintf(f.out, "created user %s (id %d)\n", u.Username, u.ID)
	return nil
}

func (f *forumCLI) follow(as, name string) error {
	actor, target, err := f.pair(as, name)
	if err != nil {
		return err
	}
	res, err := f.svc.Follow(f.ctx, actor.ID, target.ID)
	if err != nil {
		return err
	}
	verb := "unfollowed"
	if res.Following {
		verb = "followed"
	}
	fmt.Fprintf(f.out, "%s %s %s (%d followers)\n", actor.Username, verb, target.Username, res.Followers)
	return nil
}

func (f *forumCLI) request(as, name string) error {
	actor, target, err := f.pair(as, name)
	if err != nil {
		return err
	}
	pending, err := f.svc.SendMessageRequest(f.ctx, actor.ID, target.ID)
	if err != nil {
		return err
	}
	if pending {
		fmt.Fprintf(f.out, "message request sent to %s\n", target.Username)
	} else {
		fmt.Fprintf(f.out, "message request to %s withdrawn\n", target.Username)
	}
	return nil
}

func (f *forumCLI) accept(as, name string) error {
	actor, sender, err := f.pair(as, name)
	if err != nil {
		return err
	}
	if err := f.svc.AcceptMessageRequest(f.ctx, actor.ID, sender.ID); err != nil {
		return err
	}
	fmt.Fprintf(f.out, "%s and %s are now contacts\n", actor.Username, sender.Username)
	return nil
}

func (f *forumCLI) createBoard(title, description string) error {
	b := &model.Board{Title: title, Description: description}
	if err := f.st.CreateBoard(f.ctx, b); err != nil {
		return err
	}
	fmt.Fprintf(f.out, "created board %s (id %d)\n", b.Slug, b.ID)
	return nil
}

func (f *forumCLI) addAdmin(boardArg, name string) error {
	boardID, err := parseID(boardArg)
	if err != nil {
		return err
	}
	u, err := f.user(name)
	if err != nil {
		return err
	}
	if err := f.st.AddBoardAdmin(f.ctx, boardID, u.ID); err != nil {
		return err
	}
	fmt.Fprintf(f.out, "%s now moderates board %d\n", u.Username, boardID)
	return nil
}

func (f *forumCLI) submit(as string, in forum.SubmitSubject) error {
	author, err := f.user(as)
	if err != nil {
		return err
	}
	in.AuthorID = author.ID
	sub, err := f.svc.SubmitSubject(f.ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(f.out, "submitted subject %d %q\n", sub.ID, sub.Title)
	return nil
}

func (f *forumCLI) star(as, subjectArg string) error {
	id, err := parseID(subjectArg)
	if err != nil {
		return err
	}
	u, err := f.user(as)
	if err != nil {
		return err
	}
	res, err := f.svc.ToggleStar(f.ctx, id, u.ID)
	if err != nil {
		return err
	}
	verb := "unstarred"
	if res.Starred {
		verb = "starred"
	}
	fmt.Fprintf(f.out, "%s subject %d (%d stars)\n", verb, id, res.Total)
	return nil
}

func (f *forumCLI) comment(as, subjectArg, body string, replyTo uint) error {
	id, err := parseID(subjectArg)
	if err != nil {
		return err
	}
	u, err := f.user(as)
	if err != nil {
		return err
	}
	in := forum.AddComment{SubjectID: id, CommenterID: u.ID, Body: body}
	if replyTo != 0 {
		in.ReplyToID = &replyTo
	}
	c, err := f.svc.AddComment(f.ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(f.out, "added comment %d on subject %d\n", c.ID, id)
	return nil
}

func (f *forumCLI) report(as, subjectArg string) error {
	id, err := parseID(subjectArg)
	if err != nil {
		return err
	}
	u, err := f.user(as)
	if err != nil {
		return err
	}
	if _, err := f.svc.ReportSubject(f.ctx, id, u.ID); err != nil {
		return err
	}
	fmt.Fprintf(f.out, "reported subject %d\n", id)
	return nil
}

func (f *forumCLI) deactivate(as, subjectArg string) error {
	id, err := parseID(subjectArg)
	if err != nil {
		return err
	}
	u, err := f.user(as)
	if err != nil {
		return err
	}
	if err := f.svc.Deactivate(f.ctx, id, u.ID); err != nil {
		return err
	}
	fmt.Fprintf(f.out, "deactivated subject %d\n", id)
	return nil
}

func (f *forumCLI) notifications(as string, markRead bool) error {
	u, err := f.user(as)
	if err != nil {
		return err
	}
	ns, err := f.svc.Notifications(f.ctx, u.ID)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(f.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tREAD\tWHEN\tMESSAGE")
	for _, n := range ns {
		fmt.Fprintf(tw, "%d\t%t\t%s\t%s\n", n.ID, n.IsRead, n.CreatedAt.Format("2006-01-02 15:04"), n.Message())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if markRead {
		return f.svc.MarkRead(f.ctx, u.ID)
	}
	return nil
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users, follows and message requests",
}

var userCreateCmd = &cobra.Command{
	Use:   "create USERNAME",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForum(cmd, func(f *forumCLI) error { return f.createUser(args[0]) })
	},
}

var userFollowCmd = &cobra.Command{
	Use:   "follow USERNAME",
	Short: "Follow a user, or unfollow if already following",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForum(cmd, func(f *forumCLI) error { return f.follow(forumAs, args[0]) })
	},
}

var userRequestCmd = &cobra.Command{
	Use:   "request USERNAME",
	Short: "Send a message request, or withdraw a pending one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForum(cmd, func(f *forumCLI) error { return f.request(forumAs, args[0]) })
	},
}

var userAcceptCmd = &cobra.Command{
	Use:   "accept USERNAME",
	Short: "Accept a message request from USERNAME",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForum(cmd, func(f *forumCLI) error { return f.accept(forumAs, args[0]) })
	},
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Manage boards",
}

var boardCreateCmd = &cobra.Command{
	Use:   "create TITLE",
	Short: "Create a board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForum(cmd, func(f *forumCLI) error { return f.createBoard(args[0], boardDescription) })
	},
}

var boardAddAdminCmd = &cobra.Command{
	Use:   "add-admin BOARD_ID USERNAME",
	Short: "Make a user an admin of a board",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForum(cmd, func(f *forumCLI) error { return f.addAdmin(args[0], args[1]) })
	},
}

var subjectCmd = &cobra.Command{
	Use:   "subject",
	Short: "Submit, star, comment on and moderate subjects",
}

var subjectSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a subject to a board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForum(cmd, func(f *forumCLI) error {
			return f.submit(forumAs, forum.SubmitSubject{
				BoardID: subjectBoard,
				Title:   subjectTitle,
				Body:    subjectBody,
				Photo:   subjectPhoto,
			})
		})
	},
}

var subjectStarCmd = &cobra.Command{
	Use:   "star SUBJECT_ID",
	Short: "Star a subject, or remove the star",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForum(cmd, func(f *forumCLI) error { return f.star(forumAs, args[0]) })
	},
}

var subjectCommentCmd = &cobra.Command{
	Use:   "comment SUBJECT_ID",
	Short: "Comment on a subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForum(cmd, func(f *forumCLI) error {
			return f.comment(forumAs, args[0], commentBody, commentReplyTo)
		})
	},
}

var subjectReportCmd = &cobra.Command{
	Use:   "report SUBJECT_ID",
	Short: "Report a subject to its board admins",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForum(cmd, func(f *forumCLI) error { return f.report(forumAs, args[0]) })
	},
}

var subjectDeactivateCmd = &cobra.Command{
	Use:   "deactivate SUBJECT_ID",
	Short: "Hide a reported subject (board admins only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForum(cmd, func(f *forumCLI) error { return f.deactivate(forumAs, args[0]) })
	},
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List a user's notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withForum(cmd, func(f *forumCLI) error { return f.notifications(forumAs, notifyMarkRead) })
	},
}

func init() {
	for _, c := range []*cobra.Command{
		userFollowCmd, userRequestCmd, userAcceptCmd,
		subjectSubmitCmd, subjectStarCmd, subjectCommentCmd, subjectReportCmd, subjectDeactivateCmd,
		notificationsCmd,
	} {
		c.Flags().StringVar(&forumAs, "as", "", "username of the acting user")
		_ = c.MarkFlagRequired("as")
	}
	boardCreateCmd.Flags().StringVar(&boardDescription, "description", "", "board description")

	subjectSubmitCmd.Flags().UintVar(&subjectBoard, "board", 0, "board id")
	subjectSubmitCmd.Flags().StringVar(&subjectTitle, "title", "", "subject title")
	subjectSubmitCmd.Flags().StringVar(&subjectBody, "body", "", "subject body")
	subjectSubmitCmd.Flags().StringVar(&subjectPhoto, "photo", "", "path to a .jpg or .png photo, re-encoded as WebP")
	_ = subjectSubmitCmd.MarkFlagRequired("board")
	_ = subjectSubmitCmd.MarkFlagRequired("title")

	subjectCommentCmd.Flags().StringVar(&commentBody, "body", "", "comment text")
	subjectCommentCmd.Flags().UintVar(&commentReplyTo, "reply-to", 0, "id of the comment being answered")
	_ = subjectCommentCmd.MarkFlagRequired("body")

	notificationsCmd.Flags().BoolVar(&notifyMarkRead, "mark-read", false, "mark the listed notifications as read")

	userCmd.AddCommand(userCreateCmd, userFollowCmd, userRequestCmd, userAcceptCmd)
	boardCmd.AddCommand(boardCreateCmd, boardAddAdminCmd)
	subjectCmd.AddCommand(subjectSubmitCmd, subjectStarCmd, subjectCommentCmd, subjectReportCmd, subjectDeactivateCmd)
	rootCmd.AddCommand(userCmd, boardCmd, subjectCmd, notificationsCmd)
}
