// Package hot holds the JavaScript dev client the server injects into every
// page. The client keeps a websocket open to the dev server, heartbeats it,
// reloads the page when a file changes, and installs the refresh globals the
// instrumented modules call.
package hot

// DevClient returns the client script served at the dev client route.
func DevClient() string {
	return `(function () {
	// The transformed modules call these at evaluation time. Full-page
	// reload makes the registrations informational, but they must exist.
	if (typeof window.$RefreshReg$ !== 'function') {
		window.$RefreshReg$ = function (type, id) {};
	}
	if (typeof window.$RefreshSig$ !== 'function') {
		window.$RefreshSig$ = function () {
			return function (type, key, forceReset, getCustomHooks) { return type; };
		};
	}

	var protocol = window.location.protocol === 'https:' ? 'wss' : 'ws';
	var hostname = window.location.hostname;
	var port = window.location.port;
	var pathname = '/modpack-socket';
	var connection = new WebSocket(protocol + '://' + hostname + ':' + port + pathname);
	var heartbeatTimer = -1;

	var mostRecentHash = null;
	var hasErrors = false;
	var isFirstMessage = true;

	connection.onclose = function () {
		clearTimeout(heartbeatTimer);
		if (typeof console !== 'undefined' && typeof console.info === 'function') {
			console.info('The development server has disconnected.\nRefresh the page if necessary.');
		}
	};

	function ping() {
		heartbeatTimer = setTimeout(function () {
			connection.send('ping');
			ping();
		}, 3000);
	}
	connection.onopen = function () {
		ping();
	};

	function clearOutdatedErrors() {
		if (hasErrors && typeof console !== 'undefined' && typeof console.clear === 'function') {
			console.clear();
		}
		hasErrors = false;
	}

	function handleSuccess() {
		clearOutdatedErrors();
		var isUpdate = !isFirstMessage;
		isFirstMessage = false;
		if (isUpdate) {
			window.location.reload();
		}
	}

	function handleErrors(errors) {
		clearOutdatedErrors();
		isFirstMessage = false;
		hasErrors = true;
		console.error(errors);
	}

	connection.onmessage = function (e) {
		var message = JSON.parse(e.data);
		switch (message.type) {
			case 'hash':
				mostRecentHash = message.data;
				break;
			case 'ok':
				handleSuccess();
				break;
			case 'content-changed':
				window.location.reload();
				break;
			case 'warnings':
				console.warn(message.data);
				break;
			case 'errors':
				handleErrors(message.data);
				break;
			default:
				// pong and anything newer
		}
	};
})();
`
}
