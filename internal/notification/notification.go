/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package notification

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/teller/config"
	"github.com/blnkfinance/teller/internal/request"
)

// SlackNotification posts err to the configured Slack webhook.
func SlackNotification(err error) error {
	text, _ := json.Marshal(fmt.Sprintf("*Error:*\n%v", err))
	when, _ := json.Marshal(fmt.Sprintf("*Time:*\n%v", time.Now().Format(time.RFC822)))
	data := json.RawMessage(fmt.Sprintf(`{
		"blocks": [
			{
				"type": "header",
				"text": {
					"type": "plain_text",
					"text": "Error From Teller 🐞",
					"emoji": true
				}
			},
			{
				"type": "section",
				"fields": [
					{
						"type": "mrkdwn",
						"text": %s
					}
				]
			},
			{
				"type": "section",
				"fields": [
					{
						"type": "mrkdwn",
						"text": %s
					}
				]
			}
		]
	}`, text, when))

	conf, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := request.ToJsonReq(&data)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, conf.Notification.Slack.WebhookUrl, payload)
	if err != nil {
		return err
	}

	_, err = request.Call(req, nil)
	return err
}

// NotifyError logs systemError and forwards it to Slack when a webhook is
// configured. It blocks until the webhook answers or times out.
func NotifyError(systemError error) {
	logrus.Error(systemError)

	conf, err := config.Fetch()
	if err != nil {
		logrus.Debug(err)
		return
	}

	if conf.Notification.Slack.WebhookUrl != "" {
		if err := SlackNotification(systemError); err != nil {
			logrus.WithError(err).Warn("slack notification failed")
		}
	}
}
