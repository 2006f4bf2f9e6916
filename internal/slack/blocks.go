package slack

import "fmt"

// Block builders for the project lifecycle messages. The layouts mirror the
// announcements the community expects: a context header, title and
// description sections, and a footer linking demo and repo with the hour
// total.

func mrkdwnContext(text string) Block {
	return Block{
		"type": "context",
		"elements": []Block{
			{"type": "mrkdwn", "text": text},
		},
	}
}

func mrkdwnSection(text string) Block {
	return Block{
		"type": "section",
		"text": Block{"type": "mrkdwn", "text": text},
	}
}

func plainSection(text string) Block {
	return Block{
		"type": "section",
		"text": Block{"type": "plain_text", "text": text, "emoji": true},
	}
}

func linkFooter(demoLink, repoLink, hours string) Block {
	return mrkdwnContext(fmt.Sprintf("<%s|Demo> | %s | <%s|GitHub>", demoLink, hours, repoLink))
}

// ShippedDMBlocks is the direct message sent to a project's owner on approval.
// hours is the pre-formatted total, e.g. "3h 32m".
func ShippedDMBlocks(title, description, demoLink, repoLink, hours string) []Block {
	return []Block{
		mrkdwnContext(":ship: *Your project has been approved and therefore shipped!*"),
		mrkdwnSection(fmt.Sprintf("*%s*", title)),
		plainSection(description),
		linkFooter(demoLink, repoLink, hours),
	}
}

// ShippedChannelBlocks is the public channel announcement on approval.
func ShippedChannelBlocks(title, description, demoLink, repoLink, hours string) []Block {
	return []Block{
		mrkdwnContext(":ship: *A project has shipped!*"),
		mrkdwnSection(fmt.Sprintf("*%s*", title)),
		plainSection(description),
		linkFooter(demoLink, repoLink, hours),
	}
}

// RejectedDMBlocks is the direct message sent to a project's owner on
// rejection, carrying the reviewer's free-text reason. There is no
// channel-wide post for rejections.
func RejectedDMBlocks(title, reason string) []Block {
	blocks := []Block{
		mrkdwnContext(":back: *Your project was sent back to Building.*"),
		mrkdwnSection(fmt.Sprintf("*%s*", title)),
	}
	if reason != "" {
		blocks = append(blocks, plainSection(reason))
	}
	return blocks
}
