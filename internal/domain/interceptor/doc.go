/*
Package interceptor implements the two interception channels.

Click handles link activations reported by the content script. A risky
verdict produces an in-page interstitial; the user's answer arrives later
through OnUserResponse. Choosing proceed approves the URL in the shared
ledger before the tab is navigated, so the navigation channel lets it
through instead of checking it again.

Navigation handles browser-level navigations (address bar, bookmarks,
redirects). Only main-frame, direct navigations are checked. A decision
other than ALLOW replaces the tab's URL with a full-page interstitial or
the setup page. Consuming an approval happens both before classifying and
after the verdict returns, so a proceed that lands while the check is in
flight still wins.

Both channels deduplicate concurrent checks of the same (tab, URL) with
their own tracker and never surface errors to the browser: failures read
as an uncertain verdict.
*/
package interceptor
