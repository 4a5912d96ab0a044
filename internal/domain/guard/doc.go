/*
Package guard is the orchestrator between the extension and the two
interception channels.

It owns the click and navigation interceptors and the approval ledger
they share, decodes extension messages into a closed set of variants,
answers every message with a Response, and runs the periodic sweep.

# Messages

	action              payload                       response
	checkClickUrl       {url}                         {success, result} or {success:false, error, fallback}
	popupResponse       {popupId, userAction, url}    {success}
	approveNavigation   {url}                         {success, message}
	openWelcomePage     {updateToken?}                {success, tabId}
	getConfig           {}                            {success, config}
	getStats            {}                            {success, stats}
	validateToken       {token}                       {success, valid}
	setProtection       {enabled}                     {success}
	extensionInstalled  {reason}                      {success, tabId?}

Every envelope carries the sender's tabId.

# Cross-channel suppression

A proceed on a click popup calls the navigation interceptor's
ApproveUserNavigation before the tab is navigated. Full-page
interstitials send approveNavigation and navigate themselves once the
reply arrives.
*/
package guard
