// internal/driver/console.go
package driver

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/perceptlab/pairwise/internal/sequencer"
	"github.com/perceptlab/pairwise/internal/util"
)

// messageWidth keeps instruction screens readable on narrow terminals, and
// videoNameWidth keeps the two stimulus labels on one line.
const (
	messageWidth   = 72
	videoNameWidth = 28
)

var (
	headerStyle = color.New(color.FgCyan, color.Bold).SprintFunc()
	promptStyle = color.New(color.FgYellow).SprintFunc()
	videoStyle  = color.New(color.FgGreen).SprintFunc()
	dimStyle    = color.New(color.FgHiBlack).SprintFunc()
)

// Console is a line-oriented Presenter for terminal sessions: videos are
// named rather than played, and pacing waits are real. It is the harness for
// piloting the trial flow without a display stack.
type Console struct {
	out   io.Writer
	lines chan string
	errs  chan error
	inErr error

	// sleep is swappable so tests do not wait out real fixation intervals.
	sleep func(time.Duration)
}

// NewConsole returns a presenter reading responses from in and writing
// prompts to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	c := &Console{
		out:   out,
		lines: make(chan string),
		errs:  make(chan error, 1),
		sleep: time.Sleep,
	}
	go c.readLines(in)
	return c
}

// readLines feeds input lines to the response channel. One reader goroutine
// serves the whole session so a timed-out prompt never loses the next line.
func (c *Console) readLines(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		c.lines <- strings.TrimSpace(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		c.errs <- err
		return
	}
	c.errs <- io.EOF
}

func (c *Console) ShowMessage(text string) error {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, headerStyle(util.WrapToWidth(text, messageWidth)))
	fmt.Fprintln(c.out, dimStyle("Press ENTER to continue (or 'q' to quit)..."))
	line, err := c.nextLine(0)
	if err != nil {
		return err
	}
	if isQuit(line) {
		return ErrAborted
	}
	return nil
}

func (c *Console) ShowFixation(seconds float64) error {
	fmt.Fprintln(c.out, "\n        +")
	c.sleep(secondsToDuration(seconds))
	return nil
}

func (c *Console) ShowBlank(seconds float64) error {
	fmt.Fprintln(c.out)
	c.sleep(secondsToDuration(seconds))
	return nil
}

func (c *Console) ShowVideos(trial sequencer.Trial, seconds float64) error {
	fmt.Fprintf(c.out, "\n  %s    %s\n",
		videoStyle("[LEFT: "+util.TruncateRunes(trial.VideoLeft, videoNameWidth)+"]"),
		videoStyle("[RIGHT: "+util.TruncateRunes(trial.VideoRight, videoNameWidth)+"]"))
	c.sleep(secondsToDuration(seconds))
	return nil
}

func (c *Console) CollectResponse(question string, timeout time.Duration) (Response, error) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, promptStyle(question))
	fmt.Fprintln(c.out, dimStyle("Answer 'left' or 'right' ('q' to quit):"))

	start := time.Now()
	for {
		line, err := c.nextLine(timeout)
		if err != nil {
			return Response{}, err
		}
		elapsed := time.Since(start).Seconds()
		switch strings.ToLower(line) {
		case "l", "left":
			return Response{Choice: "left", Elapsed: elapsed}, nil
		case "r", "right":
			return Response{Choice: "right", Elapsed: elapsed}, nil
		case "":
			if timeout > 0 && elapsed >= timeout.Seconds() {
				return Response{Choice: "timeout", Elapsed: timeout.Seconds()}, nil
			}
			fmt.Fprintln(c.out, dimStyle("Please answer 'left' or 'right'."))
		case "q", "quit":
			return Response{}, ErrAborted
		default:
			fmt.Fprintln(c.out, dimStyle("Please answer 'left' or 'right'."))
		}
	}
}

func (c *Console) CollectConfidence(prompt string) (int, error) {
	fmt.Fprintln(c.out, promptStyle(prompt))
	for {
		line, err := c.nextLine(0)
		if err != nil {
			return 0, err
		}
		if isQuit(line) {
			return 0, ErrAborted
		}
		if line == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= 5 {
			return n, nil
		}
		fmt.Fprintln(c.out, dimStyle("Enter a rating from 1 to 5, or press ENTER to skip."))
	}
}

// nextLine waits for the next input line. A zero timeout waits indefinitely;
// a positive timeout yields the sentinel empty line after expiry.
func (c *Console) nextLine(timeout time.Duration) (string, error) {
	if c.inErr != nil {
		return "", inputClosed(c.inErr)
	}
	if timeout <= 0 {
		select {
		case line := <-c.lines:
			return line, nil
		case err := <-c.errs:
			c.inErr = err
			return "", inputClosed(err)
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case line := <-c.lines:
		return line, nil
	case err := <-c.errs:
		c.inErr = err
		return "", inputClosed(err)
	case <-timer.C:
		return "", nil
	}
}

// inputClosed maps a closed or failed input stream to an abort: a vanished
// terminal ends the session cleanly instead of crashing it.
func inputClosed(err error) error {
	if err == io.EOF {
		return ErrAborted
	}
	return err
}

func isQuit(line string) bool {
	l := strings.ToLower(line)
	return l == "q" || l == "quit"
}

func secondsToDuration(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
